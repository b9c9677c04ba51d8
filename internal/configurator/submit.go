package configurator

import (
	"context"

	"go.uber.org/zap"

	"kilowatt-backend/internal/domain"
)

// SubmitResult is the outcome of one submit attempt. QuoteID and Submission
// are set only when the quote was stored.
type SubmitResult struct {
	Message    Message
	QuoteID    string
	Submission *domain.QuoteSubmission
}

// Sent reports whether the quote was stored.
func (r SubmitResult) Sent() bool {
	return r.Submission != nil
}

// Submit sends the current selection as a quote. Only one submission runs
// at a time; a second call while one is outstanding gets
// ErrSubmissionInFlight. The selection is kept whatever the outcome.
func (w *Wizard) Submit(ctx context.Context) (SubmitResult, error) {
	w.mu.Lock()
	if w.submitting {
		w.mu.Unlock()
		return SubmitResult{}, ErrSubmissionInFlight
	}
	w.submitting = true
	sel := w.sel.Clone()
	cat := w.catalog
	w.mu.Unlock()

	res := w.submit(ctx, sel, cat)

	w.mu.Lock()
	w.submitting = false
	msg := res.Message
	w.message = &msg
	w.mu.Unlock()
	return res, nil
}

// submit runs without w.mu so the customer can keep navigating.
func (w *Wizard) submit(ctx context.Context, sel domain.Selection, cat *Catalog) SubmitResult {
	var userID string
	var ok bool
	if w.identity != nil {
		userID, ok = w.identity.CurrentUserID(ctx)
	}
	if !ok || userID == "" {
		return SubmitResult{Message: Message{Text: MsgLoginRequired, Error: true}}
	}

	q := BuildSubmission(userID, sel, cat)
	if w.quotes == nil {
		return SubmitResult{Message: Message{Text: MsgQuoteFailed, Error: true}}
	}
	id, err := w.quotes.CreateQuote(ctx, q)
	if err != nil {
		w.log.Warn("create quote", zap.String("user", userID), zap.Error(err))
		text := err.Error()
		if text == "" {
			text = MsgQuoteFailed
		}
		return SubmitResult{Message: Message{Text: text, Error: true}}
	}

	w.log.Info("quote sent",
		zap.String("quote", id),
		zap.String("user", userID),
		zap.Float64("total", q.Total),
	)
	return SubmitResult{
		Message:    Message{Text: MsgQuoteSent},
		QuoteID:    id,
		Submission: &q,
	}
}
