package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/vendora/internal/middleware"
	"github.com/vendora/internal/model"
)

const maxUploadMemory = 32 << 20

// CreateProduct godoc
// @Summary Add a product
// @Description Create a product; vendor role required. Multipart body with title, price, optional description and image.
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param description formData string false "Description"
// @Param price formData number true "Price"
// @Param image formData file false "Image"
// @Success 201 {object} model.ProductResponse
// @Failure 400 {object} map[string]string "Invalid fields"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not a vendor"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /products [post]
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, model.NewAuthError("unauthorized"))
		return
	}

	switch claims.Role {
	case model.UserRoleVendor:
	case model.UserRoleClient, model.UserRoleAdmin:
		respondError(w, model.NewAuthzError("only vendors can add products"))
		return
	default:
		respondError(w, model.NewAuthzError("only vendors can add products"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, model.NewValidationError("invalid multipart form"))
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondError(w, model.NewValidationError("title is required"))
		return
	}

	priceStr := r.FormValue("price")
	if priceStr == "" {
		respondError(w, model.NewValidationError("price is required"))
		return
	}
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		respondError(w, model.NewValidationError("price must be a positive number"))
		return
	}

	// Image MIME type and size are validated client-side only; the server
	// stores whatever arrives. Known hardening gap.
	imagePath := ""
	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		imagePath, err = h.uploads.Save(file, header)
		if err != nil {
			respondError(w, model.NewServerError("failed to store image"))
			return
		}
	} else if !errors.Is(err, http.ErrMissingFile) {
		respondError(w, model.NewValidationError("invalid image upload"))
		return
	}

	product, err := h.products.Create(r.Context(), &model.Product{
		Title:       title,
		Description: r.FormValue("description"),
		Price:       price,
		Image:       imagePath,
		VendorID:    claims.UserID,
	})
	if err != nil {
		respondError(w, model.NewServerError("server error while adding product"))
		return
	}

	respondJSON(w, http.StatusCreated, model.ProductResponse{
		Message: "Product added successfully",
		Product: product,
	})
}

// ListProducts godoc
// @Summary List all products
// @Description All products newest first with vendor name and email
// @Tags Products
// @Produce json
// @Success 200 {array} model.Product
// @Failure 500 {object} map[string]string "Server error"
// @Router /products [get]
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FindAll(r.Context())
	if err != nil {
		respondError(w, model.NewServerError("server error while fetching products"))
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// GetProduct godoc
// @Summary Get a product
// @Description One product with vendor name, email and WhatsApp number
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} model.Product
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Server error"
// @Router /products/{id} [get]
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		respondError(w, model.NewNotFoundError("product not found"))
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, model.NewServerError("server error while fetching product"))
		return
	}
	if product == nil {
		respondError(w, model.NewNotFoundError("product not found"))
		return
	}
	respondJSON(w, http.StatusOK, product)
}

// ListVendorProducts godoc
// @Summary List a vendor's products
// @Description Restricted to the vendor themself or an admin
// @Tags Products
// @Produce json
// @Param vendorId path string true "Vendor ID"
// @Success 200 {array} model.Product
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /products/vendor/{vendorId} [get]
func (h *Handler) ListVendorProducts(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, model.NewAuthError("unauthorized"))
		return
	}

	vendorID := r.PathValue("vendorId")
	switch claims.Role {
	case model.UserRoleAdmin:
	case model.UserRoleVendor, model.UserRoleClient:
		if claims.UserID != vendorID {
			respondError(w, model.NewAuthzError("not authorized to view these products"))
			return
		}
	default:
		respondError(w, model.NewAuthzError("not authorized to view these products"))
		return
	}

	if uuid.Validate(vendorID) != nil {
		respondError(w, model.NewValidationError("invalid vendor id"))
		return
	}

	products, err := h.products.FindByVendor(r.Context(), vendorID)
	if err != nil {
		respondError(w, model.NewServerError("server error while fetching vendor products"))
		return
	}
	respondJSON(w, http.StatusOK, products)
}

// UpdateProduct godoc
// @Summary Edit a product
// @Description Partial multipart update by the owning vendor or an admin; a new image replaces and deletes the old file
// @Tags Products
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Product ID"
// @Param title formData string false "Title"
// @Param description formData string false "Description"
// @Param price formData number false "Price"
// @Param image formData file false "Image"
// @Success 200 {object} model.ProductResponse
// @Failure 400 {object} map[string]string "Invalid fields"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /products/{id} [put]
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, model.NewAuthError("unauthorized"))
		return
	}

	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		respondError(w, model.NewNotFoundError("product not found"))
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, model.NewServerError("server error while editing product"))
		return
	}
	if product == nil {
		respondError(w, model.NewNotFoundError("product not found"))
		return
	}

	if !h.canModify(claims, product) {
		respondError(w, model.NewAuthzError("not authorized to edit this product"))
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		respondError(w, model.NewValidationError("invalid multipart form"))
		return
	}

	// Absent or empty fields keep their stored values.
	if title := strings.TrimSpace(r.FormValue("title")); title != "" {
		product.Title = title
	}
	if description := r.FormValue("description"); description != "" {
		product.Description = description
	}
	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			respondError(w, model.NewValidationError("price must be a non-negative number"))
			return
		}
		product.Price = price
	}

	if file, header, err := r.FormFile("image"); err == nil {
		defer file.Close()
		newPath, err := h.uploads.Save(file, header)
		if err != nil {
			respondError(w, model.NewServerError("failed to store image"))
			return
		}
		// Old file goes first; its deletion is best-effort and never
		// fails the update.
		h.uploads.Remove(product.Image)
		product.Image = newPath
	} else if !errors.Is(err, http.ErrMissingFile) {
		respondError(w, model.NewValidationError("invalid image upload"))
		return
	}

	updated, err := h.products.Update(r.Context(), product)
	if err != nil {
		respondError(w, model.NewServerError("server error while editing product"))
		return
	}
	if updated == nil {
		respondError(w, model.NewNotFoundError("product not found"))
		return
	}

	respondJSON(w, http.StatusOK, model.ProductResponse{
		Message: "Product updated successfully",
		Product: updated,
	})
}

// DeleteProduct godoc
// @Summary Delete a product
// @Description Removes the record and best-effort deletes its stored image
// @Tags Products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} map[string]string "Confirmation"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Not authorized"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Server error"
// @Security BearerAuth
// @Router /products/{id} [delete]
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, model.NewAuthError("unauthorized"))
		return
	}

	id := r.PathValue("id")
	if uuid.Validate(id) != nil {
		respondError(w, model.NewNotFoundError("product not found"))
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		respondError(w, model.NewServerError("server error while deleting product"))
		return
	}
	if product == nil {
		respondError(w, model.NewNotFoundError("product not found"))
		return
	}

	if !h.canModify(claims, product) {
		respondError(w, model.NewAuthzError("not authorized to delete this product"))
		return
	}

	h.uploads.Remove(product.Image)

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondError(w, model.NewServerError("server error while deleting product"))
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// canModify implements the shared update/delete rule: the owning vendor
// or an admin.
func (h *Handler) canModify(claims *model.TokenClaims, product *model.Product) bool {
	switch claims.Role {
	case model.UserRoleAdmin:
		return true
	case model.UserRoleVendor:
		return product.VendorID == claims.UserID
	case model.UserRoleClient:
		return false
	}
	return false
}
