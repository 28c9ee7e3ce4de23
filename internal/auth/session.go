// Package auth answers one question for the rest of the application: is
// there a currently authenticated admin identity?  The answer is derived
// from the access token on each request and passed explicitly through the
// request context; nothing is kept in package-level state.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/iliyamo/wine-dine/internal/model"
	"github.com/iliyamo/wine-dine/internal/utils"
)

// CookieName is the cookie that carries the access token for browser views.
const CookieName = "access_token"

// Identity is the authenticated caller.
type Identity struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool { return i.Role == model.RoleAdmin }

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// CurrentIdentity returns the identity stored in ctx, if any.
func CurrentIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Gate verifies access tokens issued with Secret.
type Gate struct {
	Secret string
}

func NewGate(secret string) *Gate { return &Gate{Secret: secret} }

// Authenticate extracts and verifies the access token of r.  The
// Authorization header wins over the cookie.
func (g *Gate) Authenticate(r *http.Request) (Identity, bool) {
	raw := BearerToken(r)
	if raw == "" {
		if ck, err := r.Cookie(CookieName); err == nil {
			raw = ck.Value
		}
	}
	if raw == "" {
		return Identity{}, false
	}
	claims, err := utils.ParseAccessToken(g.Secret, raw)
	if err != nil {
		return Identity{}, false
	}
	return Identity{UserID: claims.UserID, Role: claims.Role}, true
}

// BearerToken returns the token of an "Authorization: Bearer" header or "".
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
}
