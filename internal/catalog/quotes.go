package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"kilowatt-backend/internal/domain"
)

// ErrQuoteNotCreated is returned when the quote insert yields no row.
var ErrQuoteNotCreated = errors.New("Errore creazione preventivo")

// CreateQuote stores the quote header and its lines in one transaction and
// returns the new quote ID.
func (s *PostgresStore) CreateQuote(ctx context.Context, q domain.QuoteSubmission) (string, error) {
	if q.UserID == "" {
		return "", errors.New("quote user is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin quote tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	id := uuid.NewString()
	var created string
	err = tx.QueryRowContext(ctx, `
INSERT INTO quotes (id, user_id, status, total)
VALUES ($1, $2, $3, $4)
RETURNING id`,
		id, q.UserID, domain.QuoteStatusSent, q.Total,
	).Scan(&created)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrQuoteNotCreated
	}
	if err != nil {
		return "", fmt.Errorf("failed to insert quote: %w", err)
	}

	for _, item := range q.Items() {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO quote_items (quote_id, item_type, item_id, name, unit_price, meta)
VALUES ($1, $2, $3, $4, $5, '{}'::jsonb)`,
			created, string(item.ItemType), item.ItemID, item.Name, item.UnitPrice,
		); err != nil {
			return "", fmt.Errorf("failed to insert quote item %s: %w", item.ItemID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit quote: %w", err)
	}
	return created, nil
}

// ListQuotes returns the quotes of one user, newest first. An empty userID
// lists every quote.
func (s *PostgresStore) ListQuotes(ctx context.Context, userID string) ([]domain.Quote, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		rows, err = s.db.QueryContext(ctx, `
SELECT id, user_id, status, total, created_at
FROM quotes
ORDER BY created_at DESC`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
SELECT id, user_id, status, total, created_at
FROM quotes
WHERE user_id = $1
ORDER BY created_at DESC`, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	quotes := make([]domain.Quote, 0)
	index := make(map[string]int)
	for rows.Next() {
		var q domain.Quote
		if err := rows.Scan(&q.ID, &q.UserID, &q.Status, &q.Total, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		q.Items = []domain.QuoteItem{}
		index[q.ID] = len(quotes)
		quotes = append(quotes, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(quotes) == 0 {
		return quotes, nil
	}

	ids := make([]string, 0, len(quotes))
	for _, q := range quotes {
		ids = append(ids, q.ID)
	}
	itemRows, err := s.db.QueryContext(ctx, `
SELECT quote_id, item_type, item_id, name, unit_price
FROM quote_items
WHERE quote_id = ANY($1)
ORDER BY quote_id, id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list quote items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var quoteID, itemType string
		var it domain.QuoteItem
		if err := itemRows.Scan(&quoteID, &itemType, &it.ItemID, &it.Name, &it.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan quote item: %w", err)
		}
		it.ItemType = domain.ItemType(itemType)
		if i, ok := index[quoteID]; ok {
			quotes[i].Items = append(quotes[i].Items, it)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	return quotes, nil
}
