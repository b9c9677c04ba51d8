package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"kilowatt-backend/internal/domain"
)

//go:embed seed.yaml
var defaultFixture []byte

// Fixture is the seed content of an empty catalog database.
type Fixture struct {
	Products       []domain.Product             `yaml:"products"`
	Services       []fixtureService             `yaml:"services"`
	ServiceCatalog []domain.ServiceCatalogEntry `yaml:"service_catalog"`
	Packages       []domain.PackagePreset       `yaml:"packages"`
	Seo            []domain.SeoSettings         `yaml:"seo"`
}

// fixtureService lets deliverables and steps be written either as a list or
// as a single line.
type fixtureService struct {
	domain.DigitalService `yaml:",inline"`
	RawDeliverables       interface{} `yaml:"deliverables"`
	RawSteps              interface{} `yaml:"steps"`
}

// DigitalServices returns the services with their lists normalised.
func (f *Fixture) DigitalServices() []domain.DigitalService {
	out := make([]domain.DigitalService, 0, len(f.Services))
	for _, s := range f.Services {
		d := s.DigitalService
		d.Deliverables = domain.NormalizeList(s.RawDeliverables)
		d.Steps = domain.NormalizeList(s.RawSteps)
		out = append(out, d)
	}
	return out
}

// ParseFixture decodes a YAML fixture.
func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	products := make(map[string]bool, len(f.Products))
	for _, p := range f.Products {
		if products[p.ID] {
			return nil, fmt.Errorf("product %s: duplicate id", p.ID)
		}
		products[p.ID] = true
		if _, ok := domain.ParseProductCategory(string(p.Category)); !ok {
			return nil, fmt.Errorf("product %s: unknown category %q", p.ID, p.Category)
		}
		if p.PriceDay < 0 {
			return nil, fmt.Errorf("product %s: negative price", p.ID)
		}
	}
	services := make(map[string]bool, len(f.Services))
	for _, s := range f.Services {
		if services[s.ID] {
			return nil, fmt.Errorf("service %s: duplicate id", s.ID)
		}
		services[s.ID] = true
		if s.Price < 0 {
			return nil, fmt.Errorf("service %s: negative price", s.ID)
		}
	}
	slugs := make(map[string]bool, len(f.Packages))
	for _, pkg := range f.Packages {
		if slugs[pkg.Slug] {
			return nil, fmt.Errorf("package %s: duplicate slug %q", pkg.ID, pkg.Slug)
		}
		slugs[pkg.Slug] = true
	}
	return &f, nil
}

// LoadFixture reads a fixture file; an empty path means the embedded one.
func LoadFixture(path string) (*Fixture, error) {
	if path == "" {
		return DefaultFixture()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(raw)
}

// DefaultFixture is the catalog shipped with the binary.
func DefaultFixture() (*Fixture, error) {
	return ParseFixture(defaultFixture)
}
