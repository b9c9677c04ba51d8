package domain

// ProductCategory is the hardware family of a rental product.
type ProductCategory string

const (
	CategoryAudio  ProductCategory = "audio"
	CategoryLights ProductCategory = "lights"
	CategoryVideo  ProductCategory = "video"
)

// HardwareCategories in the order the hardware step shows them.
var HardwareCategories = []ProductCategory{CategoryAudio, CategoryLights, CategoryVideo}

// ParseProductCategory accepts only the known hardware categories.
func ParseProductCategory(s string) (ProductCategory, bool) {
	for _, c := range HardwareCategories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Product is a rental item (speakers, lights, projectors) priced per day.
type Product struct {
	ID          string            `json:"id" yaml:"id"`
	Slug        string            `json:"slug" yaml:"slug"`
	Name        string            `json:"name" yaml:"name"`
	Category    ProductCategory   `json:"category" yaml:"category"`
	PriceDay    float64           `json:"priceDay" yaml:"price_day"`
	Image       string            `json:"image" yaml:"image"`
	Specs       map[string]string `json:"specs" yaml:"specs"`
	Description string            `json:"description" yaml:"description"`
}

// FindProduct looks a product up by ID.
func FindProduct(products []Product, id string) *Product {
	for i := range products {
		if products[i].ID == id {
			return &products[i]
		}
	}
	return nil
}
