package dto

import (
	"marketplace-api/internal/analytics"
	"marketplace-api/internal/model"

	"github.com/shopspring/decimal"
)

// ErrorResponse carries the failing tier's own error. Tier is set when a
// write exhausted its tiers.
type ErrorResponse struct {
	Error string `json:"error"`
	Tier  string `json:"tier,omitempty"`
}

type HealthResponse struct {
	Status   string           `json:"status"`
	Database bool             `json:"database"`
	Served   map[string]int64 `json:"served"`
}

type PlanRequest struct {
	Name        string          `json:"name" validate:"required,max=128"`
	Description string          `json:"description" validate:"max=2000"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	AdLimit     int             `json:"adLimit" validate:"gte=0"`
	PhotoLimit  int             `json:"photoLimit" validate:"gte=0"`
	Features    []string        `json:"features" validate:"dive,required"`
	IsActive    *bool           `json:"isActive"`
	Order       int             `json:"order" validate:"gte=0"`
}

// ToModel defaults IsActive to true when omitted.
func (r *PlanRequest) ToModel() model.Plan {
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}

	return model.Plan{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		AdLimit:     r.AdLimit,
		PhotoLimit:  r.PhotoLimit,
		Features:    r.Features,
		IsActive:    active,
		Order:       r.Order,
	}
}

type TrackingConfigRequest struct {
	Value    string `json:"value" validate:"max=255"`
	IsActive bool   `json:"isActive"`
}

type DeactivateStoreResponse struct {
	StoreID             string `json:"storeId"`
	ProductsDeactivated int64  `json:"productsDeactivated"`
}

type ProductLinkRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"omitempty,gte=1,lte=999"`
}

type CartItem struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"gte=1,lte=999"`
}

type CartLinkRequest struct {
	Items []CartItem `json:"items" validate:"required,min=1,dive"`
}

type LinkResponse struct {
	URL     string `json:"url"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type AnalyticsItem struct {
	ID       string          `json:"itemId" validate:"required"`
	Name     string          `json:"itemName" validate:"required"`
	Category string          `json:"itemCategory"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" validate:"gte=1"`
}

type AnalyticsEventRequest struct {
	Name          string          `json:"name" validate:"required"`
	ClientID      string          `json:"clientId" validate:"max=128"`
	PageLocation  string          `json:"pageLocation" validate:"omitempty,url"`
	PageTitle     string          `json:"pageTitle"`
	Items         []AnalyticsItem `json:"items" validate:"dive"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	TransactionID string          `json:"transactionId"`
}

func (r *AnalyticsEventRequest) ToEvent() analytics.Event {
	items := make([]analytics.Item, len(r.Items))
	for i, it := range r.Items {
		items[i] = analytics.Item{
			ID:       it.ID,
			Name:     it.Name,
			Category: it.Category,
			Price:    it.Price,
			Quantity: it.Quantity,
		}
	}

	return analytics.Event{
		Name:          analytics.EventName(r.Name),
		ClientID:      r.ClientID,
		PageLocation:  r.PageLocation,
		PageTitle:     r.PageTitle,
		Items:         items,
		Currency:      r.Currency,
		TransactionID: r.TransactionID,
	}
}

type AnalyticsEventResponse struct {
	Accepted bool `json:"accepted"`
	Sent     bool `json:"sent"`
}
