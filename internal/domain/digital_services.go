package domain

import "strings"

// ServiceCategory groups digital services on the digital step.
type ServiceCategory string

const (
	ServiceCategoryBranding ServiceCategory = "branding"
	ServiceCategoryWeb      ServiceCategory = "web"
	ServiceCategorySocial   ServiceCategory = "social"
)

// DigitalService is a branding, web or social offer sold next to the hardware.
type DigitalService struct {
	ID           string          `json:"id" yaml:"id"`
	Slug         string          `json:"slug" yaml:"slug"`
	Name         string          `json:"name" yaml:"name"`
	Category     ServiceCategory `json:"category" yaml:"category"`
	Price        float64         `json:"price" yaml:"price"`
	Details      string          `json:"details" yaml:"details"`
	Audience     string          `json:"audience" yaml:"audience"`
	Deliverables []string        `json:"deliverables" yaml:"-"`
	Steps        []string        `json:"steps" yaml:"-"`
}

// FindDigitalService looks a digital service up by ID.
func FindDigitalService(services []DigitalService, id string) *DigitalService {
	for i := range services {
		if services[i].ID == id {
			return &services[i]
		}
	}
	return nil
}

// NormalizeList turns a loosely typed list value into clean strings.
// A list keeps its non-blank string items, a single non-blank string becomes
// a one-item list, anything else is empty.
func NormalizeList(v interface{}) []string {
	out := []string{}
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}
