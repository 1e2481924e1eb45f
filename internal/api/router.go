package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/vendora/internal/middleware"
)

// NewRouter creates the HTTP router with all routes
func NewRouter(h *Handler, auth *middleware.AuthMiddleware, uploadDir string, allowedOrigins []string) http.Handler {
	api := http.NewServeMux()

	// Public routes
	api.HandleFunc("POST /api/auth/register", h.Register)
	api.HandleFunc("POST /api/auth/login", h.Login)
	api.HandleFunc("GET /api/health", h.Health)
	api.HandleFunc("GET /api/products", h.ListProducts)
	api.HandleFunc("GET /api/products/{id}", h.GetProduct)

	// Protected routes
	api.Handle("POST /api/products", auth.Authenticate(http.HandlerFunc(h.CreateProduct)))
	api.Handle("PUT /api/products/{id}", auth.Authenticate(http.HandlerFunc(h.UpdateProduct)))
	api.Handle("DELETE /api/products/{id}", auth.Authenticate(http.HandlerFunc(h.DeleteProduct)))
	api.Handle("GET /api/products/vendor/{vendorId}", auth.Authenticate(http.HandlerFunc(h.ListVendorProducts)))

	mux := http.NewServeMux()
	mux.Handle("/api/", middleware.JSON(api))

	// Uploaded images are served back as static files.
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return middleware.CORS(allowedOrigins)(middleware.Logger(mux))
}
