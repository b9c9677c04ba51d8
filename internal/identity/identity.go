// Package identity resolves the signed-in customer from the identity
// provider's access token. Sign-up, login and sessions stay with the
// provider; this service only verifies tokens.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"kilowatt-backend/internal/domain"
)

// AccessTokenCookie is where the browser client keeps the access token.
const AccessTokenCookie = "sb-access-token"

// Claims are the access token claims used here.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

type UserMetadata struct {
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url"`
}

// Verifier validates HS256 access tokens.
type Verifier struct {
	secret []byte
}

// NewVerifier returns nil for an empty secret; a nil verifier treats every
// request as anonymous.
func NewVerifier(secret string) *Verifier {
	if secret == "" {
		return nil
	}
	return &Verifier{secret: []byte(secret)}
}

// Verify parses the token and returns the user it names.
func (v *Verifier) Verify(tokenStr string) (domain.User, error) {
	if v == nil {
		return domain.User{}, errors.New("verifier uninitialized")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return domain.User{}, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return domain.User{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return domain.User{}, errors.New("token subject is required")
	}
	return domain.User{
		ID:        claims.Subject,
		Email:     claims.Email,
		Name:      claims.UserMetadata.FullName,
		AvatarURL: claims.UserMetadata.AvatarURL,
	}, nil
}

type userKey struct{}

// WithUser attaches the user to the context.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// FromContext returns the user put there by Middleware.
func FromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey{}).(domain.User)
	return u, ok && u.ID != ""
}

// Resolver answers "who is the current user" from the request context.
type Resolver struct{}

func (Resolver) CurrentUserID(ctx context.Context) (string, bool) {
	u, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return u.ID, true
}

// tokenFromRequest reads a bearer token first, then the cookie.
func tokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		parts := strings.SplitN(h, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		return c.Value
	}
	return ""
}

// Middleware attaches the user of a valid token to the request context.
// Missing or invalid tokens leave the request anonymous; the catalog is
// public and only quote submission needs a user.
func Middleware(v *Verifier, onInvalid func(r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := tokenFromRequest(r)
			if tok == "" || v == nil {
				next.ServeHTTP(w, r)
				return
			}
			u, err := v.Verify(tok)
			if err != nil {
				if onInvalid != nil {
					onInvalid(r, err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), u)))
		})
	}
}
