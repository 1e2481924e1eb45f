package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendora/internal/config"
	"github.com/vendora/internal/middleware"
	"github.com/vendora/internal/model"
	"github.com/vendora/internal/upload"
)

// --- fakes ---

// fakeUserStore keeps users in memory with plain-text passwords; the
// handlers only see it through the UserStore interface.
type fakeUserStore struct {
	byEmail map[string]*model.User
	failAll bool
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: map[string]*model.User{}}
}

func (s *fakeUserStore) Create(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	user := &model.User{
		ID:             uuid.NewString(),
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		Role:           req.Role,
		WhatsappNumber: req.WhatsappNumber,
		CreatedAt:      time.Now(),
	}
	s.byEmail[req.Email] = user
	return user, nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if s.failAll {
		return nil, fmt.Errorf("store down")
	}
	return s.byEmail[email], nil
}

func (s *fakeUserStore) ValidatePassword(user *model.User, password string) bool {
	return user.Password == password
}

// fakeProductStore keeps products in memory and populates vendor views
// from a configured vendor table, mirroring the repository JOIN.
type fakeProductStore struct {
	products map[string]*model.Product
	vendors  map[string]model.ProductVendor
}

func newFakeProductStore() *fakeProductStore {
	return &fakeProductStore{
		products: map[string]*model.Product{},
		vendors:  map[string]model.ProductVendor{},
	}
}

func (s *fakeProductStore) addVendor(id, name, email, whatsapp string) {
	s.vendors[id] = model.ProductVendor{Name: name, Email: email, WhatsappNumber: whatsapp}
}

func (s *fakeProductStore) populate(p *model.Product, withContact bool) *model.Product {
	out := *p
	vendor := s.vendors[p.VendorID]
	if !withContact {
		vendor.WhatsappNumber = ""
	}
	out.Vendor = vendor
	return &out
}

func (s *fakeProductStore) Create(ctx context.Context, p *model.Product) (*model.Product, error) {
	stored := *p
	stored.ID = uuid.NewString()
	stored.CreatedAt = time.Now()
	s.products[stored.ID] = &stored
	return s.populate(&stored, false), nil
}

func (s *fakeProductStore) FindAll(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, *s.populate(p, false))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeProductStore) FindByID(ctx context.Context, id string) (*model.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	return s.populate(p, true), nil
}

func (s *fakeProductStore) FindByVendor(ctx context.Context, vendorID string) ([]model.Product, error) {
	out := []model.Product{}
	for _, p := range s.products {
		if p.VendorID == vendorID {
			out = append(out, *s.populate(p, false))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeProductStore) Update(ctx context.Context, p *model.Product) (*model.Product, error) {
	if _, ok := s.products[p.ID]; !ok {
		return nil, nil
	}
	stored := *p
	stored.Vendor = model.ProductVendor{}
	s.products[p.ID] = &stored
	return s.populate(&stored, false), nil
}

func (s *fakeProductStore) Delete(ctx context.Context, id string) error {
	if _, ok := s.products[id]; !ok {
		return fmt.Errorf("product not found")
	}
	delete(s.products, id)
	return nil
}

// --- helpers ---

func newTestAuth() *middleware.AuthMiddleware {
	return middleware.NewAuthMiddleware(config.JWTConfig{Secret: "test-secret", ExpirationHours: 24})
}

func newTestHandler(t *testing.T) (*Handler, *fakeUserStore, *fakeProductStore, *upload.Store) {
	t.Helper()
	users := newFakeUserStore()
	products := newFakeProductStore()
	uploads, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)
	return NewHandler(users, products, uploads, newTestAuth(), nil), users, products, uploads
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

// --- tests ---

func TestRegister_Vendor(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	w := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Name:           "Vera Vendor",
		Email:          "vera@example.com",
		Password:       "secret123",
		Role:           model.UserRoleVendor,
		WhatsappNumber: "+15551234567",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "User registered successfully", resp.Message)
	require.NotNil(t, resp.User)
	assert.Equal(t, model.UserRoleVendor, resp.User.Role)
	assert.Equal(t, "+15551234567", resp.User.WhatsappNumber)

	// The password hash must never appear in the response.
	assert.NotContains(t, w.Body.String(), "secret123")
	assert.NotContains(t, w.Body.String(), "password")
}

func TestRegister_DefaultsToClientRole(t *testing.T) {
	h, users, _, _ := newTestHandler(t)

	w := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Name:     "Carl",
		Email:    "carl@example.com",
		Password: "secret123",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, model.UserRoleClient, users.byEmail["carl@example.com"].Role)
}

func TestRegister_MissingFields(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	w := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Email: "no-name@example.com",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_VendorRequiresWhatsapp(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	w := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Name:     "Vera",
		Email:    "vera@example.com",
		Password: "secret123",
		Role:     model.UserRoleVendor,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "vendors must provide a WhatsApp number", errorMessage(t, w))
}

func TestRegister_UnknownRole(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	w := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Name:     "Eve",
		Email:    "eve@example.com",
		Password: "secret123",
		Role:     "superuser",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, users, _, _ := newTestHandler(t)

	first := model.RegisterRequest{Name: "First", Email: "dup@example.com", Password: "secret123"}
	w := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", first)
	require.Equal(t, http.StatusCreated, w.Code)

	second := model.RegisterRequest{Name: "Second", Email: "dup@example.com", Password: "other456"}
	w = doJSON(t, h.Register, http.MethodPost, "/api/auth/register", second)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "email already in use", errorMessage(t, w))

	// First record is unaffected.
	assert.Equal(t, "First", users.byEmail["dup@example.com"].Name)
}

func TestLogin_Success(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Name: "Carl", Email: "carl@example.com", Password: "secret123",
	})

	w := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", model.LoginRequest{
		Email: "carl@example.com", Password: "secret123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)

	claims, err := newTestAuth().ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, model.UserRoleClient, claims.Role)
}

func TestLogin_WrongPasswordAndUnknownEmailAnswerIdentically(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Name: "Carl", Email: "carl@example.com", Password: "secret123",
	})

	wrongPassword := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", model.LoginRequest{
		Email: "carl@example.com", Password: "wrong",
	})
	unknownEmail := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", model.LoginRequest{
		Email: "nobody@example.com", Password: "secret123",
	})

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "invalid credentials", errorMessage(t, wrongPassword))
}

func TestLogin_MissingFields(t *testing.T) {
	h, _, _, _ := newTestHandler(t)

	w := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", model.LoginRequest{Email: "carl@example.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRegister_StoreFailure(t *testing.T) {
	h, users, _, _ := newTestHandler(t)
	users.failAll = true

	w := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", model.RegisterRequest{
		Name: "Carl", Email: "carl@example.com", Password: "secret123",
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
