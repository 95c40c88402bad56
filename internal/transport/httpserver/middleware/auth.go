package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	accountsdomain "osca-hub-go/internal/domain/accounts"
	"osca-hub-go/pkg/logger"
)

type TokenParser interface {
	ParseToken(tokenString string) (*accountsdomain.Claims, error)
}

type JWTAuth struct {
	parser TokenParser
	log    logger.Logger
}

type contextKey int

const (
	userKey contextKey = iota
)

// User is the authenticated principal attached to the request context.
type User struct {
	ID           string
	Role         accountsdomain.Role
	BarangayCode string
	SeniorID     string
}

func NewJWTAuth(parser TokenParser, log logger.Logger) *JWTAuth {
	return &JWTAuth{parser: parser, log: log}
}

func (a *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			unauthorized(w)
			return
		}

		claims, err := a.parser.ParseToken(token)
		if err != nil {
			a.log.BusinessError("auth: token rejected", err)
			unauthorized(w)
			return
		}

		user := User{
			ID:           claims.UserID,
			Role:         claims.Role,
			BarangayCode: claims.BarangayCode,
			SeniorID:     claims.SeniorID,
		}
		if user.ID == "" || !user.Role.Valid() {
			unauthorized(w)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireRoles rejects requests whose principal is not one of the given
// roles.
func RequireRoles(roles ...accountsdomain.Role) func(http.Handler) http.Handler {
	allowed := make(map[accountsdomain.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				unauthorized(w)
				return
			}
			if _, ok := allowed[user.Role]; !ok {
				writeError(w, http.StatusForbidden, "forbidden", "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(value string) (string, bool) {
	parts := strings.Fields(value)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "invalid_token", "invalid token")
}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	value := ctx.Value(userKey)
	user, ok := value.(User)
	if !ok || user.ID == "" {
		return User{}, false
	}
	return user, true
}

// ScopeBarangay returns the barangay filter a principal is confined to.
// OSCA admins are unrestricted.
func (u User) ScopeBarangay() string {
	if u.Role == accountsdomain.RoleOSCA {
		return ""
	}
	return u.BarangayCode
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
