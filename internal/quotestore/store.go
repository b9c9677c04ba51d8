// Package quotestore keeps the customer's configurator selection between
// visits. Persistence is a convenience: callers are expected to ignore the
// errors returned here.
package quotestore

import (
	"context"
	"encoding/json"
	"errors"

	"kilowatt-backend/internal/domain"
)

// StorageKey is the fixed key the selection blob lives under.
const StorageKey = "kw_quote_v1"

// ErrUnavailable is returned by a backend that cannot persist anything.
var ErrUnavailable = errors.New("quote store unavailable")

// Backend is a minimal key/value blob store.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Store reads and writes one session's selection.
type Store struct {
	backend Backend
	key     string
}

// ForSession scopes the fixed storage key to one browser session.
func ForSession(b Backend, sessionID string) *Store {
	key := StorageKey
	if sessionID != "" {
		key += ":" + sessionID
	}
	return &Store{backend: b, key: key}
}

// Key is the backend key this store uses.
func (s *Store) Key() string {
	return s.key
}

// Load returns the stored selection. A missing or malformed blob loads as an
// empty selection without error.
func (s *Store) Load(ctx context.Context) (domain.Selection, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return domain.Selection{}, err
	}
	if !ok {
		return domain.Selection{}, nil
	}
	sel, ok := Decode(raw)
	if !ok {
		return domain.Selection{}, nil
	}
	return sel, nil
}

func (s *Store) Save(ctx context.Context, sel domain.Selection) error {
	return s.backend.Set(ctx, s.key, Encode(sel))
}

func (s *Store) Clear(ctx context.Context) error {
	return s.backend.Delete(ctx, s.key)
}

// Encode serializes a selection; nil lists are written as [].
func Encode(sel domain.Selection) []byte {
	blob := struct {
		Products []string `json:"products"`
		Services []string `json:"services"`
	}{
		Products: append([]string{}, sel.Products...),
		Services: append([]string{}, sel.Services...),
	}
	raw, _ := json.Marshal(blob)
	return raw
}

// Decode accepts only an object whose products and services are both string
// arrays.
func Decode(raw []byte) (domain.Selection, bool) {
	var blob struct {
		Products *[]string `json:"products"`
		Services *[]string `json:"services"`
	}
	if len(raw) == 0 {
		return domain.Selection{}, false
	}
	if err := json.Unmarshal(raw, &blob); err != nil {
		return domain.Selection{}, false
	}
	if blob.Products == nil || blob.Services == nil {
		return domain.Selection{}, false
	}
	return domain.NewSelection(*blob.Products, *blob.Services), true
}
