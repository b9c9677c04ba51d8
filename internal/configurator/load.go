package configurator

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kilowatt-backend/internal/domain"
)

// LoadReport tells which catalog lists could not be fetched.
type LoadReport struct {
	Products error
	Services error
	Packages error
}

// OK is true when all three lists were fetched.
func (r LoadReport) OK() bool {
	return r.Products == nil && r.Services == nil && r.Packages == nil
}

// Unavailable names the lists that failed, in display order.
func (r LoadReport) Unavailable() []string {
	out := make([]string, 0, 3)
	if r.Products != nil {
		out = append(out, "products")
	}
	if r.Services != nil {
		out = append(out, "services")
	}
	if r.Packages != nil {
		out = append(out, "packages")
	}
	return out
}

// LoadCatalog fetches products, digital services and packages concurrently.
// A failing list is left empty and recorded in the report; the others are
// still populated.
func LoadCatalog(ctx context.Context, src CatalogSource, log *zap.Logger) (*Catalog, LoadReport) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		products []domain.Product
		services []domain.DigitalService
		packages []domain.PackagePreset
		report   LoadReport
	)

	// each fetch records its own error and never cancels the others
	var g errgroup.Group
	g.Go(func() error {
		products, report.Products = src.ListProducts(ctx)
		return nil
	})
	g.Go(func() error {
		services, report.Services = src.ListDigitalServices(ctx)
		return nil
	})
	g.Go(func() error {
		packages, report.Packages = src.ListPackagePresets(ctx)
		return nil
	})
	_ = g.Wait()

	if report.Products != nil {
		log.Warn("load products", zap.Error(report.Products))
		products = nil
	}
	if report.Services != nil {
		log.Warn("load digital services", zap.Error(report.Services))
		services = nil
	}
	if report.Packages != nil {
		log.Warn("load packages", zap.Error(report.Packages))
		packages = nil
	}

	return NewCatalog(products, services, packages), report
}
