package domain

import "time"

// QuoteStatusSent is the status of a quote right after submission.
const QuoteStatusSent = "sent"

// ItemType tells product and service lines apart in quote_items.
type ItemType string

const (
	ItemTypeProduct ItemType = "product"
	ItemTypeService ItemType = "service"
)

// ProductLine is a product frozen at submission time.
type ProductLine struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	PriceDay float64 `json:"priceDay"`
}

// ServiceLine is a digital service frozen at submission time.
type ServiceLine struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// QuoteSubmission is what gets sent to the catalog when the customer
// confirms the summary.
type QuoteSubmission struct {
	UserID   string        `json:"userId"`
	Products []ProductLine `json:"products"`
	Services []ServiceLine `json:"services"`
	Total    float64       `json:"total"`
}

// QuoteItem is one stored line of a quote.
type QuoteItem struct {
	ItemType  ItemType `json:"itemType"`
	ItemID    string   `json:"itemId"`
	Name      string   `json:"name"`
	UnitPrice float64  `json:"unitPrice"`
}

// Quote is a stored quote as read back for "my quotes" and the admin list.
type Quote struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Status    string      `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"createdAt"`
	Items     []QuoteItem `json:"items"`
}

// Items flattens the submission into stored lines, products first.
func (q QuoteSubmission) Items() []QuoteItem {
	items := make([]QuoteItem, 0, len(q.Products)+len(q.Services))
	for _, p := range q.Products {
		items = append(items, QuoteItem{ItemType: ItemTypeProduct, ItemID: p.ID, Name: p.Name, UnitPrice: p.PriceDay})
	}
	for _, s := range q.Services {
		items = append(items, QuoteItem{ItemType: ItemTypeService, ItemID: s.ID, Name: s.Name, UnitPrice: s.Price})
	}
	return items
}
