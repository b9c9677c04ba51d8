package configurator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kilowatt-backend/internal/domain"
)

func TestSubmitWithoutUser(t *testing.T) {
	quotes := &fakeQuotes{id: "q-1"}
	w := newLoadedWizard(&fakeStore{}, quotes, "")
	ctx := context.Background()
	require.NoError(t, w.SelectPreset(ctx, "starter"))

	res, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, Message{Text: MsgLoginRequired, Error: true}, res.Message)
	assert.False(t, res.Sent())
	assert.Equal(t, 0, quotes.callCount())
	assert.Equal(t, &res.Message, w.State().Message)
}

func TestSubmitSuccessKeepsSelection(t *testing.T) {
	quotes := &fakeQuotes{id: "q-42"}
	w := newLoadedWizard(&fakeStore{}, quotes, "u-1")
	ctx := context.Background()
	require.NoError(t, w.SelectPreset(ctx, "starter"))
	require.NoError(t, w.JumpTo(ctx, StepSummary))

	res, err := w.Submit(ctx)
	require.NoError(t, err)
	assert.True(t, res.Sent())
	assert.Equal(t, "q-42", res.QuoteID)
	assert.Equal(t, Message{Text: MsgQuoteSent}, res.Message)

	require.Equal(t, 1, quotes.callCount())
	sent := quotes.calls[0]
	assert.Equal(t, "u-1", sent.UserID)
	assert.Equal(t, 230.0, sent.Total)
	assert.Equal(t, []domain.ProductLine{
		{ID: "A", Name: "Cassa A", PriceDay: 80},
		{ID: "C", Name: "Ledwall C", PriceDay: 100},
	}, sent.Products)
	assert.Equal(t, []domain.ServiceLine{{ID: "S1", Name: "Landing", Price: 50}}, sent.Services)

	st := w.State()
	assert.Equal(t, StepSummary, st.Step)
	assert.Equal(t, domain.NewSelection([]string{"A", "C"}, []string{"S1"}), st.Selection)
	assert.False(t, st.Submitting)
}

func TestSubmitFailureMessages(t *testing.T) {
	for _, tc := range []struct {
		name string
		err  error
		want string
	}{
		{"collaborator text", errors.New("Errore creazione preventivo"), "Errore creazione preventivo"},
		{"empty text falls back", errors.New(""), MsgQuoteFailed},
	} {
		t.Run(tc.name, func(t *testing.T) {
			quotes := &fakeQuotes{err: tc.err}
			w := newLoadedWizard(&fakeStore{}, quotes, "u-1")
			ctx := context.Background()
			w.StartCustom(ctx, true)
			w.ToggleProduct(ctx, "L")

			res, err := w.Submit(ctx)
			require.NoError(t, err)
			assert.Equal(t, Message{Text: tc.want, Error: true}, res.Message)
			assert.False(t, res.Sent())
			assert.Equal(t, []string{"L"}, w.State().Selection.Products)

			// a manual retry issues a new call
			_, err = w.Submit(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, quotes.callCount())
		})
	}
}

func TestSubmitWithoutQuoteCreator(t *testing.T) {
	w := newLoadedWizard(&fakeStore{}, nil, "u-1")
	res, err := w.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Message{Text: MsgQuoteFailed, Error: true}, res.Message)
}

func TestSubmitSingleInFlight(t *testing.T) {
	quotes := &fakeQuotes{
		id:      "q-1",
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	w := newLoadedWizard(&fakeStore{}, quotes, "u-1")
	ctx := context.Background()
	require.NoError(t, w.SelectPreset(ctx, "starter"))

	type outcome struct {
		res SubmitResult
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := w.Submit(ctx)
		done <- outcome{res, err}
	}()
	<-quotes.entered

	assert.True(t, w.State().Submitting)
	_, err := w.Submit(ctx)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	// navigation keeps working while the call is outstanding
	w.Advance()
	w.ToggleProduct(ctx, "L")
	assert.Equal(t, StepHardware, w.State().Step)

	close(quotes.block)
	first := <-done
	require.NoError(t, first.err)
	assert.True(t, first.res.Sent())
	assert.Equal(t, 1, quotes.callCount())
	assert.False(t, w.State().Submitting)
}
