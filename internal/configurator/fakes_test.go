package configurator

import (
	"context"
	"errors"
	"sync"

	"kilowatt-backend/internal/domain"
)

// testCatalog holds A(audio,80), B(audio,60), C(video,100), L(lights,120),
// S1(web,50), S2(social,30) and the package "starter" = {A,C}/{S1}.
func testProducts() []domain.Product {
	return []domain.Product{
		{ID: "A", Slug: "a", Name: "Cassa A", Category: domain.CategoryAudio, PriceDay: 80},
		{ID: "B", Slug: "b", Name: "Cassa B", Category: domain.CategoryAudio, PriceDay: 60},
		{ID: "C", Slug: "c", Name: "Ledwall C", Category: domain.CategoryVideo, PriceDay: 100},
		{ID: "L", Slug: "l", Name: "Fari L", Category: domain.CategoryLights, PriceDay: 120},
	}
}

func testServices() []domain.DigitalService {
	return []domain.DigitalService{
		{ID: "S1", Slug: "s1", Name: "Landing", Category: domain.ServiceCategoryWeb, Price: 50},
		{ID: "S2", Slug: "s2", Name: "Social", Category: domain.ServiceCategorySocial, Price: 30},
	}
}

func testPackages() []domain.PackagePreset {
	return []domain.PackagePreset{
		{ID: "pk1", Slug: "starter", Name: "Starter", ProductIDs: []string{"A", "C"}, ServiceIDs: []string{"S1"}},
		{ID: "pk2", Slug: "lights", Name: "Luci", ProductIDs: []string{"L"}},
	}
}

func testCatalog() *Catalog {
	return NewCatalog(testProducts(), testServices(), testPackages())
}

type fakeSource struct {
	productsErr error
	servicesErr error
	packagesErr error
}

func (f *fakeSource) ListProducts(context.Context) ([]domain.Product, error) {
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return testProducts(), nil
}

func (f *fakeSource) ListDigitalServices(context.Context) ([]domain.DigitalService, error) {
	if f.servicesErr != nil {
		return nil, f.servicesErr
	}
	return testServices(), nil
}

func (f *fakeSource) ListPackagePresets(context.Context) ([]domain.PackagePreset, error) {
	if f.packagesErr != nil {
		return nil, f.packagesErr
	}
	return testPackages(), nil
}

type fakeIdentity struct{ userID string }

func (f fakeIdentity) CurrentUserID(context.Context) (string, bool) {
	return f.userID, f.userID != ""
}

type fakeQuotes struct {
	mu    sync.Mutex
	calls []domain.QuoteSubmission
	id    string
	err   error
	// block, when set, holds CreateQuote until it is closed
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeQuotes) CreateQuote(_ context.Context, q domain.QuoteSubmission) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	f.mu.Unlock()
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	return f.id, f.err
}

func (f *fakeQuotes) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeStore struct {
	saved   *domain.Selection
	saves   int
	clears  int
	failing bool
}

var errStoreDown = errors.New("storage disabled")

func (f *fakeStore) Load(context.Context) (domain.Selection, error) {
	if f.failing {
		return domain.Selection{}, errStoreDown
	}
	if f.saved == nil {
		return domain.NewSelection(nil, nil), nil
	}
	return f.saved.Clone(), nil
}

func (f *fakeStore) Save(_ context.Context, sel domain.Selection) error {
	f.saves++
	if f.failing {
		return errStoreDown
	}
	c := sel.Clone()
	f.saved = &c
	return nil
}

func (f *fakeStore) Clear(context.Context) error {
	f.clears++
	if f.failing {
		return errStoreDown
	}
	f.saved = nil
	return nil
}

// gatedStore holds every Save until release is closed, then fails it.
type gatedStore struct {
	mu      sync.Mutex
	saves   int
	entered chan struct{}
	release chan struct{}
}

func (g *gatedStore) Load(context.Context) (domain.Selection, error) {
	return domain.Selection{}, errStoreDown
}

func (g *gatedStore) Save(context.Context, domain.Selection) error {
	g.entered <- struct{}{}
	<-g.release
	g.mu.Lock()
	g.saves++
	g.mu.Unlock()
	return errStoreDown
}

func (g *gatedStore) Clear(context.Context) error {
	return errStoreDown
}

func (g *gatedStore) saveCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.saves
}

// newLoadedWizard returns a mounted wizard with the test catalog loaded.
func newLoadedWizard(store *fakeStore, quotes *fakeQuotes, userID string) *Wizard {
	deps := Deps{
		Catalog:  &fakeSource{},
		Identity: fakeIdentity{userID: userID},
	}
	if store != nil {
		deps.Store = store
	}
	if quotes != nil {
		deps.Quotes = quotes
	}
	w := New(deps)
	ctx := context.Background()
	w.Mount(ctx)
	w.Load(ctx)
	return w
}
