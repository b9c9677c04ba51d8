package domain

// Selection is the set of picked product and service IDs. Both lists keep
// insertion order and never hold duplicates.
type Selection struct {
	Products []string `json:"products"`
	Services []string `json:"services"`
}

// NewSelection builds a selection from raw ID lists, dropping empty IDs and
// repeats.
func NewSelection(products, services []string) Selection {
	return Selection{
		Products: uniqueIDs(products),
		Services: uniqueIDs(services),
	}
}

func (s Selection) IsEmpty() bool {
	return len(s.Products) == 0 && len(s.Services) == 0
}

func (s Selection) HasProduct(id string) bool {
	return containsID(s.Products, id)
}

func (s Selection) HasService(id string) bool {
	return containsID(s.Services, id)
}

// Clone returns a copy that shares no backing arrays with s.
func (s Selection) Clone() Selection {
	return Selection{
		Products: append([]string{}, s.Products...),
		Services: append([]string{}, s.Services...),
	}
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
