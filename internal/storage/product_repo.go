package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vendora/internal/model"
)

type ProductRepository struct {
	db *Database
}

func NewProductRepository(db *Database) *ProductRepository {
	return &ProductRepository{db: db}
}

// productRow joins the product with its owning vendor's public fields.
type productRow struct {
	model.Product
	VendorName     string `db:"vendor_name"`
	VendorEmail    string `db:"vendor_email"`
	VendorWhatsapp string `db:"vendor_whatsapp"`
}

func (row *productRow) toModel() *model.Product {
	p := row.Product
	p.Vendor = model.ProductVendor{
		Name:           row.VendorName,
		Email:          row.VendorEmail,
		WhatsappNumber: row.VendorWhatsapp,
	}
	return &p
}

const productColumns = `
	p.id, p.title, p.description, p.price, p.image, p.vendor_id, p.created_at,
	u.name AS vendor_name, u.email AS vendor_email
`

func (r *ProductRepository) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	var id string
	query := `
		INSERT INTO products (title, description, price, image, vendor_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, p.Title, p.Description, p.Price, p.Image, p.VendorID).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return r.findOne(ctx, id, false)
}

func (r *ProductRepository) FindAll(ctx context.Context) ([]model.Product, error) {
	var rows []productRow
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN users u ON u.id = p.vendor_id
		ORDER BY p.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to find products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].toModel())
	}
	return products, nil
}

// FindByID returns the vendor-populated product including the vendor's
// contact number, which only the detail view exposes.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	return r.findOne(ctx, id, true)
}

func (r *ProductRepository) FindByVendor(ctx context.Context, vendorID string) ([]model.Product, error) {
	var rows []productRow
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN users u ON u.id = p.vendor_id
		WHERE p.vendor_id = $1
		ORDER BY p.created_at DESC
	`
	if err := r.db.SelectContext(ctx, &rows, query, vendorID); err != nil {
		return nil, fmt.Errorf("failed to find vendor products: %w", err)
	}

	products := make([]model.Product, 0, len(rows))
	for i := range rows {
		products = append(products, *rows[i].toModel())
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	query := `
		UPDATE products SET title = $1, description = $2, price = $3, image = $4
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, p.Title, p.Description, p.Price, p.Image, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, nil
	}

	return r.findOne(ctx, p.ID, false)
}

func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("product not found")
	}

	return nil
}

// ReferencedImages lists every image path currently attached to a product,
// for the upload-area orphan sweep.
func (r *ProductRepository) ReferencedImages(ctx context.Context) ([]string, error) {
	var images []string
	query := `SELECT image FROM products WHERE image <> ''`
	if err := r.db.SelectContext(ctx, &images, query); err != nil {
		return nil, fmt.Errorf("failed to list referenced images: %w", err)
	}
	return images, nil
}

func (r *ProductRepository) findOne(ctx context.Context, id string, withContact bool) (*model.Product, error) {
	columns := productColumns
	if withContact {
		columns += `, u.whatsapp_number AS vendor_whatsapp`
	}

	var row productRow
	query := `
		SELECT ` + columns + `
		FROM products p
		JOIN users u ON u.id = p.vendor_id
		WHERE p.id = $1
	`
	err := r.db.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return row.toModel(), nil
}
