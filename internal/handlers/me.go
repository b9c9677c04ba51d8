package handlers

import (
	"net/http"

	"kilowatt-backend/internal/domain"
	"kilowatt-backend/internal/identity"
)

type MeResponse struct {
	User        domain.User `json:"user"`
	DisplayName string      `json:"displayName"`
	QuotesSent  int         `json:"quotesSent"` // quotes this user has submitted
}

// currentUser answers 401 when the request carries no valid access token.
func (e *Env) currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := identity.FromContext(r.Context())
	if !ok {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return domain.User{}, false
	}
	return u, true
}

// GET /api/me
func (e *Env) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u, ok := e.currentUser(w, r)
	if !ok {
		return
	}

	resp := MeResponse{
		User:        u,
		DisplayName: u.DisplayName(),
	}

	// the count is informative only, a failing store leaves it at zero
	if e.Quotes != nil {
		if quotes, err := e.Quotes.ListQuotes(r.Context(), u.ID); err == nil {
			resp.QuotesSent = len(quotes)
		}
	}

	e.writeJSON(w, resp)
}

// GET /api/me/quotes
func (e *Env) HandleMeQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	u, ok := e.currentUser(w, r)
	if !ok {
		return
	}
	if e.Quotes == nil {
		http.Error(w, "database is not configured", http.StatusInternalServerError)
		return
	}

	quotes, err := e.Quotes.ListQuotes(r.Context(), u.ID)
	if err != nil {
		http.Error(w, "failed to load quotes: "+err.Error(), http.StatusInternalServerError)
		return
	}
	e.writeJSON(w, quotes)
}
