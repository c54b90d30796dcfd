package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleSeller Role = "SELLER"
	RoleAdmin  Role = "ADMIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string    `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"size:32" json:"phone"`
	City      string    `gorm:"size:128" json:"city"`
	State     string    `gorm:"size:64" json:"state"`
	Role      Role      `gorm:"size:16;index;not null" json:"role"` // BUYER, SELLER, ADMIN
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Seller struct {
	ID string `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	// FK → users.id
	UserID    string    `gorm:"size:64;uniqueIndex;not null" json:"userId"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	ID          string `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	Name        string `gorm:"size:128;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	LogoURL     string `gorm:"size:512" json:"logoUrl"`
	BannerURL   string `gorm:"size:512" json:"bannerUrl"`
	IsActive    bool   `gorm:"index;not null" json:"isActive"`
	// FK → sellers.id
	SellerID  string    `gorm:"size:64;index;not null" json:"sellerId"`
	Seller    *Seller   `gorm:"foreignKey:SellerID" json:"seller,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Product struct {
	ID          string          `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency    string          `gorm:"size:8;not null" json:"currency"`
	Category    string          `gorm:"size:64;index" json:"category"`
	Condition   string          `gorm:"size:16" json:"condition"` // NEW, USED, REFURBISHED
	IsActive    bool            `gorm:"index;not null" json:"isActive"`
	Images      []ProductImage  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images"`
	// FK → stores.id
	StoreID   string    `gorm:"size:64;index;not null" json:"storeId"`
	Store     *Store    `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProductImage struct {
	ID        string `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	ProductID string `gorm:"size:64;index;not null" json:"productId"`
	URL       string `gorm:"size:512;not null" json:"url"`
	Alt       string `gorm:"size:255" json:"alt"`
	Order     int    `gorm:"not null" json:"order"` // display sort only
}

type Category struct {
	ID   string `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	Name string `gorm:"size:128;not null" json:"name"`
	Slug string `gorm:"size:128;uniqueIndex;not null" json:"slug"`
}

type Plan struct {
	ID          string                      `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	Name        string                      `gorm:"size:128;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Price       decimal.Decimal             `gorm:"type:decimal(12,2);not null" json:"price"`
	Currency    string                      `gorm:"size:8;not null" json:"currency"`
	AdLimit     int                         `gorm:"not null" json:"adLimit"`
	PhotoLimit  int                         `gorm:"not null" json:"photoLimit"`
	Features    datatypes.JSONSlice[string] `json:"features"`
	IsActive    bool                        `gorm:"index;not null" json:"isActive"`
	Order       int                         `gorm:"not null" json:"order"` // display sequence, not unique
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

type Subscription struct {
	ID        string     `gorm:"primaryKey;size:64;not null" json:"id" validate:"required"`
	SellerID  string     `gorm:"size:64;index;not null" json:"sellerId"`
	PlanID    string     `gorm:"size:64;index;not null" json:"planId"`
	Status    string     `gorm:"size:32;not null" json:"status"` // ACTIVE, CANCELLED, EXPIRED
	StartedAt *time.Time `json:"startedAt"`
	EndsAt    *time.Time `json:"endsAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type SystemConfig struct {
	Key       string    `gorm:"primaryKey;size:64;not null" json:"key" validate:"required"`
	Value     string    `gorm:"type:text" json:"value"`
	IsActive  bool      `gorm:"not null" json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// All lists every table the service owns, in dependency order.
func All() []any {
	return []any{
		&User{},
		&Seller{},
		&Store{},
		&Category{},
		&Product{},
		&ProductImage{},
		&Plan{},
		&Subscription{},
		&Order{},
		&OrderItem{},
		&SystemConfig{},
	}
}
