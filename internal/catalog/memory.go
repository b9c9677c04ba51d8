package catalog

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kilowatt-backend/internal/domain"
)

// MemoryStore serves the catalog from a fixture and keeps quotes in memory.
// It backs the server when no database is configured.
type MemoryStore struct {
	products       []domain.Product
	services       []domain.DigitalService
	serviceCatalog []domain.ServiceCatalogEntry
	packages       []domain.PackagePreset
	seo            []domain.SeoSettings

	mu     sync.Mutex
	quotes []domain.Quote
	now    func() time.Time
}

func NewMemoryStore(f *Fixture) *MemoryStore {
	m := &MemoryStore{
		products:       append([]domain.Product{}, f.Products...),
		services:       f.DigitalServices(),
		serviceCatalog: make([]domain.ServiceCatalogEntry, 0, len(f.ServiceCatalog)),
		packages:       append([]domain.PackagePreset{}, f.Packages...),
		seo:            append([]domain.SeoSettings{}, f.Seo...),
		now:            time.Now,
	}
	for _, e := range f.ServiceCatalog {
		if e.IconKey == "" {
			e.IconKey = domain.DefaultIconKey
		}
		m.serviceCatalog = append(m.serviceCatalog, e)
	}

	// same orderings as the SQL store
	sort.SliceStable(m.products, func(i, j int) bool { return m.products[i].Name < m.products[j].Name })
	sort.SliceStable(m.services, func(i, j int) bool { return m.services[i].Name < m.services[j].Name })
	sort.SliceStable(m.serviceCatalog, func(i, j int) bool { return m.serviceCatalog[i].Title < m.serviceCatalog[j].Title })
	sort.SliceStable(m.packages, func(i, j int) bool { return m.packages[i].BasePrice < m.packages[j].BasePrice })
	return m
}

func (m *MemoryStore) ListProducts(context.Context) ([]domain.Product, error) {
	return append([]domain.Product{}, m.products...), nil
}

func (m *MemoryStore) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	for _, p := range m.products {
		if p.Slug == slug {
			return &p, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListDigitalServices(context.Context) ([]domain.DigitalService, error) {
	return append([]domain.DigitalService{}, m.services...), nil
}

func (m *MemoryStore) GetDigitalServiceBySlug(_ context.Context, slug string) (*domain.DigitalService, error) {
	for _, d := range m.services {
		if d.Slug == slug {
			return &d, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListServiceCatalog(context.Context) ([]domain.ServiceCatalogEntry, error) {
	return append([]domain.ServiceCatalogEntry{}, m.serviceCatalog...), nil
}

func (m *MemoryStore) GetServiceCatalogBySlug(_ context.Context, slug string) (*domain.ServiceCatalogEntry, error) {
	for _, e := range m.serviceCatalog {
		if e.Slug == slug {
			return &e, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListPackagePresets(context.Context) ([]domain.PackagePreset, error) {
	return append([]domain.PackagePreset{}, m.packages...), nil
}

func (m *MemoryStore) GetSeoSettings(_ context.Context, page string) (*domain.SeoSettings, error) {
	for _, s := range m.seo {
		if s.Page == page {
			return &s, nil
		}
	}
	return nil, nil
}

// CreateQuote appends the quote to the in-memory list.
func (m *MemoryStore) CreateQuote(_ context.Context, q domain.QuoteSubmission) (string, error) {
	if q.UserID == "" {
		return "", errors.New("quote user is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	quote := domain.Quote{
		ID:        uuid.NewString(),
		UserID:    q.UserID,
		Status:    domain.QuoteStatusSent,
		Total:     q.Total,
		CreatedAt: m.now(),
		Items:     q.Items(),
	}
	m.quotes = append(m.quotes, quote)
	return quote.ID, nil
}

// ListQuotes returns quotes newest first; an empty userID lists all.
func (m *MemoryStore) ListQuotes(_ context.Context, userID string) ([]domain.Quote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Quote, 0)
	for i := len(m.quotes) - 1; i >= 0; i-- {
		if userID == "" || m.quotes[i].UserID == userID {
			out = append(out, m.quotes[i])
		}
	}
	return out, nil
}
