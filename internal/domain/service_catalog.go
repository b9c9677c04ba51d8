package domain

// DefaultIconKey is used when a catalog entry has no icon of its own.
const DefaultIconKey = "globe"

// ServiceCatalogEntry describes one of the company's service lines on the
// marketing pages (noleggio, video, branding...).
type ServiceCatalogEntry struct {
	ID              string `json:"id" yaml:"id"`
	Slug            string `json:"slug" yaml:"slug"`
	Title           string `json:"title" yaml:"title"`
	Description     string `json:"description" yaml:"description"`
	LongDescription string `json:"longDescription" yaml:"long_description"`
	Image           string `json:"image" yaml:"image"`
	IconKey         string `json:"iconKey" yaml:"icon_key"`
}

// SeoSettings holds the meta tags of one page.
type SeoSettings struct {
	Page        string `json:"page" yaml:"page"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Keywords    string `json:"keywords" yaml:"keywords"`
}
