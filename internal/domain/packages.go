package domain

// PackagePreset bundles a fixed set of products and services.
type PackagePreset struct {
	ID          string   `json:"id" yaml:"id"`
	Slug        string   `json:"slug" yaml:"slug"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Audience    string   `json:"audience" yaml:"audience"`
	BasePrice   float64  `json:"basePrice" yaml:"base_price"`
	Badge       string   `json:"badge,omitempty" yaml:"badge"`
	ProductIDs  []string `json:"productIds" yaml:"product_ids"`
	ServiceIDs  []string `json:"serviceIds" yaml:"service_ids"`
}

// FindPackageBySlug returns nil for an empty or unknown slug.
func FindPackageBySlug(packages []PackagePreset, slug string) *PackagePreset {
	if slug == "" {
		return nil
	}
	for i := range packages {
		if packages[i].Slug == slug {
			return &packages[i]
		}
	}
	return nil
}
