package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"kilowatt-backend/internal/configurator"
	"kilowatt-backend/internal/domain"
	"kilowatt-backend/internal/identity"
)

type quoteView struct {
	configurator.State
	Summary configurator.Summary `json:"summary"`
	QuoteID string               `json:"quoteId,omitempty"`
}

func viewOf(wiz *configurator.Wizard) quoteView {
	return quoteView{State: wiz.State(), Summary: wiz.Summary()}
}

var quoteActions = map[string]bool{
	"next": true, "prev": true, "jump": true,
	"preset": true, "custom": true, "reset": true,
	"products/toggle": true, "services/toggle": true,
}

type jumpRequest struct {
	Step string `json:"step"`
}

type presetRequest struct {
	Slug string `json:"slug"`
}

type customRequest struct {
	JumpToHardware bool `json:"jumpToHardware"`
}

type toggleRequest struct {
	ID string `json:"id"`
}

func (e *Env) requireSessions(w http.ResponseWriter) bool {
	if e.Sessions == nil {
		http.Error(w, "quote wizard is not configured", http.StatusInternalServerError)
		return false
	}
	return true
}

// GET /api/quote?preset=&step=
func (e *Env) HandleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !e.requireSessions(w) {
		return
	}

	wiz := e.Sessions.Wizard(w, r)
	q := r.URL.Query()
	wiz.ResolveInitialIntent(r.Context(), strings.TrimSpace(q.Get("preset")), strings.TrimSpace(q.Get("step")))

	e.writeJSON(w, viewOf(wiz))
}

// HandleQuoteAction serves the wizard commands:
//
//	POST /api/quote/next
//	POST /api/quote/prev
//	POST /api/quote/jump             {"step": "summary"}
//	POST /api/quote/preset           {"slug": "medium"}
//	POST /api/quote/custom           {"jumpToHardware": true}
//	POST /api/quote/reset
//	POST /api/quote/products/toggle  {"id": "p1"}
//	POST /api/quote/services/toggle  {"id": "s-brand"}
func (e *Env) HandleQuoteAction(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/quote/"
	action := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if action == "" || !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !e.requireSessions(w) {
		return
	}

	ctx := r.Context()
	var err error

	if !quoteActions[action] {
		http.NotFound(w, r)
		return
	}

	wiz := e.Sessions.Wizard(w, r)

	switch action {
	case "next":
		wiz.Advance()
	case "prev":
		wiz.Retreat()
	case "reset":
		wiz.Reset(ctx)
	case "jump":
		var req jumpRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		err = wiz.JumpTo(ctx, configurator.Step(req.Step))
	case "preset":
		var req presetRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		err = wiz.SelectPreset(ctx, strings.TrimSpace(req.Slug))
	case "custom":
		var req customRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		wiz.StartCustom(ctx, req.JumpToHardware)
	case "products/toggle", "services/toggle":
		var req toggleRequest
		if err := decodeJSON(r, &req); err != nil {
			http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
			return
		}
		id := strings.TrimSpace(req.ID)
		if id == "" {
			http.Error(w, "id is required", http.StatusBadRequest)
			return
		}
		if action == "products/toggle" {
			wiz.ToggleProduct(ctx, id)
		} else {
			wiz.ToggleService(ctx, id)
		}
	}

	switch {
	case errors.Is(err, configurator.ErrUnknownStep):
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	case errors.Is(err, configurator.ErrUnknownPreset):
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	e.writeJSON(w, viewOf(wiz))
}

// POST /api/quote/submit
func (e *Env) HandleQuoteSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !e.requireSessions(w) {
		return
	}

	wiz := e.Sessions.Wizard(w, r)
	res, err := wiz.Submit(r.Context())
	if errors.Is(err, configurator.ErrSubmissionInFlight) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	view := viewOf(wiz)
	view.QuoteID = res.QuoteID

	var status int
	switch {
	case res.Sent():
		status = http.StatusCreated
		e.notifyQuote(r, res)
	case res.Message.Text == configurator.MsgLoginRequired:
		status = http.StatusUnauthorized
	default:
		status = http.StatusBadGateway
	}
	e.writeJSONStatus(w, status, view)
}

func (e *Env) notifyQuote(r *http.Request, res configurator.SubmitResult) {
	if e.Notifier == nil || !e.Notifier.Enabled() {
		return
	}
	customer := res.Submission.UserID
	if u, ok := identity.FromContext(r.Context()); ok {
		customer = u.DisplayName()
		if u.Email != "" && u.Email != customer {
			customer += " <" + u.Email + ">"
		}
	}
	e.Notifier.NotifyQuote(res.QuoteID, customer, *res.Submission)
	e.logger().Debug("quote notification queued", zap.String("quote", res.QuoteID))
}

type hardwareResponse struct {
	Category domain.ProductCategory      `json:"category"`
	Filter   configurator.HardwareFilter `json:"filter"`
	Products []domain.Product            `json:"products"`
	Selected []string                    `json:"selected"`
}

// GET /api/quote/hardware?category=audio&filter=top
func (e *Env) HandleQuoteHardware(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !e.requireSessions(w) {
		return
	}

	q := r.URL.Query()
	category, ok := domain.ParseProductCategory(q.Get("category"))
	if !ok {
		http.Error(w, "unknown category", http.StatusBadRequest)
		return
	}
	filter := configurator.ParseHardwareFilter(q.Get("filter"))

	wiz := e.Sessions.Wizard(w, r)
	products := wiz.Catalog().HardwareProducts(category, filter)

	sel := wiz.State().Selection
	selected := make([]string, 0, 1)
	for _, p := range products {
		if sel.HasProduct(p.ID) {
			selected = append(selected, p.ID)
		}
	}

	e.writeJSON(w, hardwareResponse{
		Category: category,
		Filter:   filter,
		Products: products,
		Selected: selected,
	})
}
