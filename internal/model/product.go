package model

import "time"

// ProductVendor is the vendor view embedded in product responses.
// The whatsapp number is only selected on the detail query.
type ProductVendor struct {
	Name           string `json:"name" db:"vendor_name"`
	Email          string `json:"email" db:"vendor_email"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" db:"vendor_whatsapp"`
}

type Product struct {
	ID          string        `json:"id" db:"id"`
	Title       string        `json:"title" db:"title"`
	Description string        `json:"description" db:"description"`
	Price       float64       `json:"price" db:"price"`
	Image       string        `json:"image" db:"image"`
	VendorID    string        `json:"vendorId" db:"vendor_id"`
	Vendor      ProductVendor `json:"vendor"`
	CreatedAt   time.Time     `json:"createdAt" db:"created_at"`
}

type ProductResponse struct {
	Message string   `json:"message"`
	Product *Product `json:"product"`
}
