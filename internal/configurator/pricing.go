package configurator

import "kilowatt-backend/internal/domain"

// ApplyProductToggle returns the selection after the customer clicks a
// product. A selected product is deselected. Otherwise it is selected and
// every other selected product of the same category is dropped: one product
// per category. Selecting an ID the catalog does not know changes nothing.
func ApplyProductToggle(sel domain.Selection, cat *Catalog, id string) domain.Selection {
	next := sel.Clone()
	if next.HasProduct(id) {
		next.Products = removeID(next.Products, id)
		return next
	}

	product, ok := cat.Product(id)
	if !ok {
		return next
	}

	kept := make([]string, 0, len(next.Products)+1)
	for _, pid := range next.Products {
		if other, ok := cat.Product(pid); ok && other.Category == product.Category {
			continue
		}
		kept = append(kept, pid)
	}
	next.Products = append(kept, id)
	return next
}

// ApplyServiceToggle flips one service; services never exclude each other.
func ApplyServiceToggle(sel domain.Selection, id string) domain.Selection {
	next := sel.Clone()
	if id == "" {
		return next
	}
	if next.HasService(id) {
		next.Services = removeID(next.Services, id)
	} else {
		next.Services = append(next.Services, id)
	}
	return next
}

// Total sums the day price of the selected products and the price of the
// selected services. IDs missing from the catalog count as zero.
func Total(sel domain.Selection, cat *Catalog) float64 {
	var total float64
	for _, pid := range sel.Products {
		if p, ok := cat.Product(pid); ok {
			total += p.PriceDay
		}
	}
	for _, sid := range sel.Services {
		if s, ok := cat.Service(sid); ok {
			total += s.Price
		}
	}
	return total
}

// Summary is the resolved content of the last step.
type Summary struct {
	Products []domain.Product        `json:"products"`
	Services []domain.DigitalService `json:"services"`
	Total    float64                 `json:"total"`
}

// BuildSummary resolves the selection in selection order, skipping stale
// IDs.
func BuildSummary(sel domain.Selection, cat *Catalog) Summary {
	s := Summary{
		Products: make([]domain.Product, 0, len(sel.Products)),
		Services: make([]domain.DigitalService, 0, len(sel.Services)),
	}
	for _, pid := range sel.Products {
		if p, ok := cat.Product(pid); ok {
			s.Products = append(s.Products, p)
			s.Total += p.PriceDay
		}
	}
	for _, sid := range sel.Services {
		if svc, ok := cat.Service(sid); ok {
			s.Services = append(s.Services, svc)
			s.Total += svc.Price
		}
	}
	return s
}

// BuildSubmission freezes the selection into quote lines. Lines follow
// catalog order, as the catalog lists them.
func BuildSubmission(userID string, sel domain.Selection, cat *Catalog) domain.QuoteSubmission {
	q := domain.QuoteSubmission{
		UserID:   userID,
		Products: make([]domain.ProductLine, 0, len(sel.Products)),
		Services: make([]domain.ServiceLine, 0, len(sel.Services)),
		Total:    Total(sel, cat),
	}
	for _, p := range cat.Products() {
		if sel.HasProduct(p.ID) {
			q.Products = append(q.Products, domain.ProductLine{ID: p.ID, Name: p.Name, PriceDay: p.PriceDay})
		}
	}
	for _, s := range cat.Services() {
		if sel.HasService(s.ID) {
			q.Services = append(q.Services, domain.ServiceLine{ID: s.ID, Name: s.Name, Price: s.Price})
		}
	}
	return q
}

func removeID(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
