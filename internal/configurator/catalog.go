package configurator

import (
	"sort"

	"kilowatt-backend/internal/domain"
)

// Catalog is an immutable snapshot of what can be selected.
type Catalog struct {
	products []domain.Product
	services []domain.DigitalService
	packages []domain.PackagePreset

	productByID map[string]int
	serviceByID map[string]int
}

// NewCatalog indexes the lists. Nil lists are treated as empty.
func NewCatalog(products []domain.Product, services []domain.DigitalService, packages []domain.PackagePreset) *Catalog {
	c := &Catalog{
		products:    make([]domain.Product, 0, len(products)),
		services:    make([]domain.DigitalService, 0, len(services)),
		packages:    append([]domain.PackagePreset{}, packages...),
		productByID: make(map[string]int, len(products)),
		serviceByID: make(map[string]int, len(services)),
	}
	// a repeated ID keeps its first entry
	for _, p := range products {
		if _, dup := c.productByID[p.ID]; !dup {
			c.productByID[p.ID] = len(c.products)
			c.products = append(c.products, p)
		}
	}
	for _, s := range services {
		if _, dup := c.serviceByID[s.ID]; !dup {
			c.serviceByID[s.ID] = len(c.services)
			c.services = append(c.services, s)
		}
	}
	return c
}

func (c *Catalog) Products() []domain.Product {
	if c == nil {
		return nil
	}
	return c.products
}

func (c *Catalog) Services() []domain.DigitalService {
	if c == nil {
		return nil
	}
	return c.services
}

func (c *Catalog) Packages() []domain.PackagePreset {
	if c == nil {
		return nil
	}
	return c.packages
}

// Product resolves a product ID in this snapshot.
func (c *Catalog) Product(id string) (domain.Product, bool) {
	if c == nil {
		return domain.Product{}, false
	}
	i, ok := c.productByID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

// Service resolves a digital service ID in this snapshot.
func (c *Catalog) Service(id string) (domain.DigitalService, bool) {
	if c == nil {
		return domain.DigitalService{}, false
	}
	i, ok := c.serviceByID[id]
	if !ok {
		return domain.DigitalService{}, false
	}
	return c.services[i], true
}

// PackageBySlug resolves a package slug in this snapshot.
func (c *Catalog) PackageBySlug(slug string) (domain.PackagePreset, bool) {
	if c == nil {
		return domain.PackagePreset{}, false
	}
	p := domain.FindPackageBySlug(c.packages, slug)
	if p == nil {
		return domain.PackagePreset{}, false
	}
	return *p, true
}

// HardwareFilter narrows the products shown for one category.
type HardwareFilter string

const (
	FilterAll     HardwareFilter = "all"
	FilterPopular HardwareFilter = "popular"
	FilterTop     HardwareFilter = "top"
)

// hardwareFilterLimit caps the popular and top lists.
const hardwareFilterLimit = 6

// ParseHardwareFilter maps unknown or empty values to FilterAll.
func ParseHardwareFilter(s string) HardwareFilter {
	switch HardwareFilter(s) {
	case FilterPopular:
		return FilterPopular
	case FilterTop:
		return FilterTop
	default:
		return FilterAll
	}
}

// HardwareProducts lists the products of one category. Popular keeps the
// first six in catalog order; top keeps the six most expensive per day.
func (c *Catalog) HardwareProducts(category domain.ProductCategory, filter HardwareFilter) []domain.Product {
	out := make([]domain.Product, 0)
	for _, p := range c.Products() {
		if p.Category == category {
			out = append(out, p)
		}
	}
	switch filter {
	case FilterPopular:
		if len(out) > hardwareFilterLimit {
			out = out[:hardwareFilterLimit]
		}
	case FilterTop:
		sort.SliceStable(out, func(i, j int) bool { return out[i].PriceDay > out[j].PriceDay })
		if len(out) > hardwareFilterLimit {
			out = out[:hardwareFilterLimit]
		}
	}
	return out
}

// ServicesByCategory lists the digital services of one category.
func (c *Catalog) ServicesByCategory(category domain.ServiceCategory) []domain.DigitalService {
	out := make([]domain.DigitalService, 0)
	for _, s := range c.Services() {
		if s.Category == category {
			out = append(out, s)
		}
	}
	return out
}
