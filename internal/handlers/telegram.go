package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"kilowatt-backend/internal/domain"
)

const telegramTimeout = 10 * time.Second

// TelegramNotifier tells the staff chat about new quotes.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	APIURL   string // e.g. "https://api.telegram.org"
	Client   *http.Client
	Log      *zap.Logger

	wg sync.WaitGroup
}

// Enabled is false until both the bot token and the chat ID are set.
func (n *TelegramNotifier) Enabled() bool {
	return n != nil && strings.TrimSpace(n.BotToken) != "" && strings.TrimSpace(n.ChatID) != ""
}

func (n *TelegramNotifier) logger() *zap.Logger {
	if n.Log == nil {
		return zap.NewNop()
	}
	return n.Log
}

// Send posts one message. It is the low level sender behind NotifyQuote.
func (n *TelegramNotifier) Send(ctx context.Context, text string) error {
	if !n.Enabled() {
		return fmt.Errorf("telegram: empty bot token or chat id")
	}

	base := strings.TrimRight(n.APIURL, "/")
	if base == "" {
		base = "https://api.telegram.org"
	}
	apiURL := base + "/bot" + strings.TrimSpace(n.BotToken) + "/sendMessage"

	form := url.Values{}
	form.Set("chat_id", strings.TrimSpace(n.ChatID))
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := n.Client
	if client == nil {
		client = &http.Client{Timeout: telegramTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram: non-OK status %s", resp.Status)
	}
	return nil
}

// NotifyQuote sends the quote summary in the background with its own
// timeout. Failures are only logged.
func (n *TelegramNotifier) NotifyQuote(quoteID, customer string, q domain.QuoteSubmission) {
	if !n.Enabled() {
		return
	}
	text := FormatQuoteMessage(quoteID, customer, q)

	// not the request context: the response is already on its way
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), telegramTimeout)
		defer cancel()
		if err := n.Send(ctx, text); err != nil {
			n.logger().Warn("quote notification failed", zap.String("quote", quoteID), zap.Error(err))
		}
	}()
}

// Wait blocks until queued notifications are done.
func (n *TelegramNotifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

// FormatQuoteMessage renders the staff message for a new quote.
func FormatQuoteMessage(quoteID, customer string, q domain.QuoteSubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🧾 Nuovo preventivo %s\n\nCliente: %s\n", quoteID, htmlEscape(customer))

	if len(q.Products) > 0 {
		b.WriteString("\nNoleggio:\n")
		for _, p := range q.Products {
			fmt.Fprintf(&b, "• %s: € %.2f / giorno\n", htmlEscape(p.Name), p.PriceDay)
		}
	}
	if len(q.Services) > 0 {
		b.WriteString("\nServizi digitali:\n")
		for _, s := range q.Services {
			fmt.Fprintf(&b, "• %s: € %.2f\n", htmlEscape(s.Name), s.Price)
		}
	}
	fmt.Fprintf(&b, "\nTotale: € %.2f", q.Total)
	return b.String()
}

var telegramEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func htmlEscape(s string) string {
	return telegramEscaper.Replace(s)
}
