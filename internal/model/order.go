package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        string          `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	BuyerID   string          `gorm:"size:64;index;not null" json:"buyerId"`
	StoreID   string          `gorm:"size:64;index;not null" json:"storeId"`
	Status    string          `gorm:"size:32;index;not null" json:"status"` // PENDING, CONFIRMED, CANCELLED
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total"`
	Currency  string          `gorm:"size:8;not null" json:"currency"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type OrderItem struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// FK → orders.id
	OrderID string `gorm:"size:64;index;not null" json:"orderId"`
	// FK → products.id
	ProductID string          `gorm:"size:64;index;not null" json:"productId"`
	Quantity  int32           `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unitPrice"`

	CreatedAt time.Time `json:"createdAt"`
}
