package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// AdminKeyHeader carries the back office key.
const AdminKeyHeader = "X-Admin-Key"

// requireAdmin checks the admin key against the configured bcrypt hash.
func (e *Env) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if e.AdminKeyHash == "" {
		http.Error(w, "admin access is not configured", http.StatusForbidden)
		return false
	}
	key := strings.TrimSpace(r.Header.Get(AdminKeyHeader))
	if key == "" {
		http.Error(w, "admin key required", http.StatusUnauthorized)
		return false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(e.AdminKeyHash), []byte(key)); err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

// HashAdminKey returns the bcrypt hash to put in ADMIN_KEY_HASH.
func HashAdminKey(key string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// GET /api/admin/quotes, every submitted quote, newest first
func (e *Env) HandleAdminQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !e.requireAdmin(w, r) {
		return
	}
	if e.Quotes == nil {
		http.Error(w, "database is not configured", http.StatusInternalServerError)
		return
	}

	quotes, err := e.Quotes.ListQuotes(r.Context(), "")
	if err != nil {
		http.Error(w, "failed to load quotes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	e.writeJSON(w, quotes)
}
