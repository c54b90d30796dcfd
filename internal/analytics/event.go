package analytics

import (
	"marketplace-api/internal/apperror"

	"github.com/shopspring/decimal"
)

type EventName string

const (
	PageView       EventName = "page_view"
	ViewItem       EventName = "view_item"
	AddToCart      EventName = "add_to_cart"
	RemoveFromCart EventName = "remove_from_cart"
	BeginCheckout  EventName = "begin_checkout"
	Purchase       EventName = "purchase"
)

func (n EventName) isCommerce() bool {
	switch n {
	case ViewItem, AddToCart, RemoveFromCart, BeginCheckout, Purchase:
		return true
	}
	return false
}

type Item struct {
	ID       string
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
}

type Event struct {
	Name     EventName
	ClientID string

	// page_view
	PageLocation string
	PageTitle    string

	// commerce events
	Items         []Item
	Currency      string
	TransactionID string // purchase only
}

func (e *Event) Validate() error {
	switch {
	case e.Name == PageView:
		if e.PageLocation == "" {
			return &apperror.ValidationError{Field: "pageLocation", Message: "is required for page_view"}
		}
		return nil
	case !e.Name.isCommerce():
		return &apperror.ValidationError{Field: "name", Message: "unknown event " + string(e.Name)}
	}

	if len(e.Items) == 0 {
		return &apperror.ValidationError{Field: "items", Message: "at least one item is required"}
	}
	for _, it := range e.Items {
		if it.ID == "" || it.Name == "" {
			return &apperror.ValidationError{Field: "items", Message: "item id and name are required"}
		}
		if it.Quantity <= 0 {
			return &apperror.ValidationError{Field: "items", Message: "quantity must be positive"}
		}
	}
	if e.Name == Purchase {
		if e.TransactionID == "" {
			return &apperror.ValidationError{Field: "transactionId", Message: "is required for purchase"}
		}
		if e.Currency == "" {
			return &apperror.ValidationError{Field: "currency", Message: "is required for purchase"}
		}
	}
	return nil
}

// Value is the sum of item totals.
func (e *Event) Value() decimal.Decimal {
	total := decimal.Zero
	for _, it := range e.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (e *Event) params() map[string]any {
	if e.Name == PageView {
		p := map[string]any{"page_location": e.PageLocation}
		if e.PageTitle != "" {
			p["page_title"] = e.PageTitle
		}
		return p
	}

	items := make([]map[string]any, len(e.Items))
	for i, it := range e.Items {
		item := map[string]any{
			"item_id":   it.ID,
			"item_name": it.Name,
			"price":     it.Price.InexactFloat64(),
			"quantity":  it.Quantity,
		}
		if it.Category != "" {
			item["item_category"] = it.Category
		}
		items[i] = item
	}

	currency := e.Currency
	if currency == "" {
		currency = "BRL"
	}

	p := map[string]any{
		"currency": currency,
		"value":    e.Value().InexactFloat64(),
		"items":    items,
	}
	if e.Name == Purchase {
		p["transaction_id"] = e.TransactionID
	}
	return p
}
