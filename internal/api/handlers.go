package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vendora/internal/middleware"
	"github.com/vendora/internal/model"
	"github.com/vendora/internal/upload"
)

// UserStore is the credential store surface the handlers need.
type UserStore interface {
	Create(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	ValidatePassword(user *model.User, password string) bool
}

// ProductStore is the product store surface the handlers need.
type ProductStore interface {
	Create(ctx context.Context, p *model.Product) (*model.Product, error)
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByVendor(ctx context.Context, vendorID string) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id string) error
}

// Pinger reports store reachability for the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler contains all API handlers
type Handler struct {
	users    UserStore
	products ProductStore
	uploads  *upload.Store
	auth     *middleware.AuthMiddleware
	db       Pinger
}

// NewHandler creates a new API handler
func NewHandler(users UserStore, products ProductStore, uploads *upload.Store, auth *middleware.AuthMiddleware, db Pinger) *Handler {
	return &Handler{
		users:    users,
		products: products,
		uploads:  uploads,
		auth:     auth,
		db:       db,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, err *model.APIError) {
	respondJSON(w, err.Status, map[string]string{"error": err.Message})
}

// Register godoc
// @Summary Register a new user
// @Description Create an account; vendors must supply a WhatsApp number
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "Registration details"
// @Success 201 {object} model.AuthResponse
// @Failure 400 {object} map[string]string "Invalid request or email in use"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.NewValidationError("invalid request body"))
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, model.NewValidationError("please provide all required fields"))
		return
	}

	if req.Role == "" {
		req.Role = model.UserRoleClient
	}
	if !req.Role.Valid() {
		respondError(w, model.NewValidationError("unknown role"))
		return
	}
	if req.Role == model.UserRoleVendor && req.WhatsappNumber == "" {
		respondError(w, model.NewValidationError("vendors must provide a WhatsApp number"))
		return
	}
	if req.Role != model.UserRoleVendor {
		// Contact numbers are a vendor-only attribute.
		req.WhatsappNumber = ""
	}

	existing, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		respondError(w, model.NewServerError("server error during registration"))
		return
	}
	if existing != nil {
		respondError(w, model.NewConflictError("email already in use"))
		return
	}

	user, err := h.users.Create(r.Context(), &req)
	if err != nil {
		respondError(w, model.NewServerError("server error during registration"))
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		respondError(w, model.NewServerError("failed to generate token"))
		return
	}

	respondJSON(w, http.StatusCreated, model.AuthResponse{
		Message: "User registered successfully",
		Token:   token,
		User:    user,
	})
}

// Login godoc
// @Summary User login
// @Description Authenticate and return a session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Login credentials"
// @Success 200 {object} model.AuthResponse
// @Failure 400 {object} map[string]string "Missing fields"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Server error"
// @Router /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, model.NewValidationError("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		respondError(w, model.NewValidationError("please provide email and password"))
		return
	}

	// Unknown email and wrong password answer identically so the API
	// never leaks which addresses are registered.
	user, err := h.users.FindByEmail(r.Context(), req.Email)
	if err != nil {
		respondError(w, model.NewServerError("server error during login"))
		return
	}
	if user == nil || !h.users.ValidatePassword(user, req.Password) {
		respondError(w, model.NewAuthError("invalid credentials"))
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		respondError(w, model.NewServerError("failed to generate token"))
		return
	}

	respondJSON(w, http.StatusOK, model.AuthResponse{
		Token: token,
		User:  user,
	})
}

// Health godoc
// @Summary Health check
// @Tags System
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.db.Ping(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
