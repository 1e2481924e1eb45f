package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vendora/internal/config"
	"github.com/vendora/internal/model"
)

type contextKey string

const UserContextKey contextKey = "user"

// AuthMiddleware issues and verifies the bearer tokens protecting the API.
// Verification is a pure boundary check: the token is self-contained and is
// never re-validated against the credential store.
type AuthMiddleware struct {
	jwtSecret []byte
	expHours  int
}

func NewAuthMiddleware(cfg config.JWTConfig) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: []byte(cfg.Secret),
		expHours:  cfg.ExpirationHours,
	}
}

// Authenticate rejects requests without a valid bearer token and attaches
// the decoded claims to the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			respondAuthError(w, model.NewAuthError("no token provided"))
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := m.ValidateToken(tokenStr)
		if err != nil {
			respondAuthError(w, model.NewAuthError("invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GenerateToken creates a signed token carrying the user's id and role.
func (m *AuthMiddleware) GenerateToken(user *model.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    string(user.Role),
		"exp":     now.Add(time.Duration(m.expHours) * time.Hour).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.jwtSecret)
}

// ValidateToken verifies signature and expiry and returns the claims.
func (m *AuthMiddleware) ValidateToken(tokenStr string) (*model.TokenClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}

	userID, ok := claims["user_id"].(string)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	roleStr, ok := claims["role"].(string)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	role := model.UserRole(roleStr)
	if !role.Valid() {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return &model.TokenClaims{UserID: userID, Role: role}, nil
}

// GetUserFromContext extracts the authenticated claims from the context.
func GetUserFromContext(ctx context.Context) *model.TokenClaims {
	claims, ok := ctx.Value(UserContextKey).(*model.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

func respondAuthError(w http.ResponseWriter, err *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status)
	w.Write([]byte(`{"error": "` + err.Message + `"}`))
}
