// Package handlers is the HTTP surface of the storefront: catalog reads, the
// quote wizard, the printable summary and the account endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"kilowatt-backend/internal/configurator"
	"kilowatt-backend/internal/domain"
)

// CatalogReader is everything the public catalog pages read.
type CatalogReader interface {
	configurator.CatalogSource
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetDigitalServiceBySlug(ctx context.Context, slug string) (*domain.DigitalService, error)
	ListServiceCatalog(ctx context.Context) ([]domain.ServiceCatalogEntry, error)
	GetServiceCatalogBySlug(ctx context.Context, slug string) (*domain.ServiceCatalogEntry, error)
	GetSeoSettings(ctx context.Context, page string) (*domain.SeoSettings, error)
}

// QuoteRepository stores and lists submitted quotes.
type QuoteRepository interface {
	configurator.QuoteCreator
	ListQuotes(ctx context.Context, userID string) ([]domain.Quote, error)
}

// Env holds handler dependencies.
type Env struct {
	Catalog  CatalogReader
	Quotes   QuoteRepository
	Sessions *Sessions
	Notifier *TelegramNotifier

	// bcrypt hash of the key the back office sends in X-Admin-Key
	AdminKeyHash string

	Log *zap.Logger
}

func (e *Env) logger() *zap.Logger {
	if e.Log == nil {
		return zap.NewNop()
	}
	return e.Log
}

// writeJSON is a small helper for JSON responses.
func (e *Env) writeJSON(w http.ResponseWriter, v interface{}) {
	e.writeJSONStatus(w, http.StatusOK, v)
}

func (e *Env) writeJSONStatus(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		e.logger().Warn("encode response", zap.Error(err))
	}
}

// decodeJSON reads an optional JSON body. An empty body leaves v untouched.
func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// CORS answers preflights and sets the CORS headers. With no allowed
// origins the API is open to any origin without credentials, which is
// enough when the storefront is served from FRONTEND_DIR on the same origin.
// A request from a listed origin gets that origin echoed back with
// credentials allowed, so the browser sends the session cookie.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			if len(allowed) == 0 {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Add("Vary", "Origin")
				if origin := r.Header.Get("Origin"); allowed[origin] {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
				}
			}
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Admin-Key, X-Request-ID")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
