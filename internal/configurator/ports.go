package configurator

import (
	"context"

	"kilowatt-backend/internal/domain"
)

// CatalogSource lists what the wizard sells. Each list may fail on its own.
type CatalogSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	ListDigitalServices(ctx context.Context) ([]domain.DigitalService, error)
	ListPackagePresets(ctx context.Context) ([]domain.PackagePreset, error)
}

// QuoteCreator stores a submitted quote and returns its ID.
type QuoteCreator interface {
	CreateQuote(ctx context.Context, q domain.QuoteSubmission) (string, error)
}

// Identity tells whether someone is signed in.
type Identity interface {
	CurrentUserID(ctx context.Context) (string, bool)
}

// SelectionStore persists the selection between visits. The wizard ignores
// its errors.
type SelectionStore interface {
	Load(ctx context.Context) (domain.Selection, error)
	Save(ctx context.Context, sel domain.Selection) error
	Clear(ctx context.Context) error
}
