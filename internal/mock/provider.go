// Package mock holds the terminal fallback tier: static records shaped exactly
// like live rows, nested relations included.
package mock

import (
	"fmt"
	"log/slog"
	"time"

	"marketplace-api/internal/apperror"
	"marketplace-api/internal/model"

	"github.com/shopspring/decimal"
)

// Marker prefixes every log line emitted by this tier.
const Marker = "[MOCK DATA]"

var seededAt = time.Date(2024, time.January, 15, 12, 0, 0, 0, time.UTC)

type Provider struct {
	logger *slog.Logger
}

func NewProvider(logger *slog.Logger) *Provider {
	return &Provider{logger: logger}
}

func (p *Provider) warn(resource string) {
	p.logger.Warn(Marker+" primary and REST tiers unavailable, serving static data", "resource", resource)
}

// Each accessor builds its records on every call, so callers are free to
// mutate what they get back.

func (p *Provider) Plans() []model.Plan {
	p.warn("plans")
	return plans()
}

func (p *Provider) Products() []model.Product {
	p.warn("products")
	return products()
}

func (p *Provider) Product(id string) (*model.Product, error) {
	p.warn("product")
	for _, prod := range products() {
		if prod.ID == id {
			return &prod, nil
		}
	}
	return nil, fmt.Errorf("product %s: %w", id, apperror.ErrNotFound)
}

func (p *Provider) Stores() []model.Store {
	p.warn("stores")
	return stores()
}

func (p *Provider) Store(id string) (*model.Store, error) {
	p.warn("store")
	for _, s := range stores() {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("store %s: %w", id, apperror.ErrNotFound)
}

func (p *Provider) TrackingConfigs() model.TrackingConfig {
	p.warn("tracking_configs")
	return model.NewTrackingConfig([]model.SystemConfig{
		{Key: string(model.TrackingGoogleAnalytics), Value: "", IsActive: false, CreatedAt: seededAt, UpdatedAt: seededAt},
		{Key: string(model.TrackingFacebookPixel), Value: "", IsActive: false, CreatedAt: seededAt, UpdatedAt: seededAt},
	})
}

func (p *Provider) AdminStats() model.AdminStats {
	p.warn("admin_stats")
	return model.AdminStats{
		TotalUsers:    1250,
		TotalProducts: 3420,
		TotalStores:   185,
		TotalOrders:   892,
	}
}

func plans() []model.Plan {
	out := model.DefaultPlans()
	for i := range out {
		out[i].ID = "mock-" + out[i].ID
		out[i].CreatedAt = seededAt
		out[i].UpdatedAt = seededAt
	}
	return out
}

func users() []model.User {
	return []model.User{
		{
			ID:        "mock-user-1",
			Name:      "Carlos Silva",
			Email:     "carlos@example.com",
			Phone:     "(11) 98765-4321",
			City:      "São Paulo",
			State:     "SP",
			Role:      model.RoleSeller,
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			ID:        "mock-user-2",
			Name:      "Ana Souza",
			Email:     "ana@example.com",
			Phone:     "(21) 99876-5432",
			City:      "Rio de Janeiro",
			State:     "RJ",
			Role:      model.RoleSeller,
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
	}
}

func stores() []model.Store {
	us := users()
	return []model.Store{
		{
			ID:          "mock-store-1",
			Name:        "TechStore SP",
			Description: "Eletrônicos novos e seminovos com garantia",
			LogoURL:     "https://placehold.co/200x200?text=TechStore",
			BannerURL:   "https://placehold.co/1200x300?text=TechStore",
			IsActive:    true,
			SellerID:    "mock-seller-1",
			Seller: &model.Seller{
				ID:        "mock-seller-1",
				UserID:    us[0].ID,
				User:      &us[0],
				CreatedAt: seededAt,
				UpdatedAt: seededAt,
			},
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			ID:          "mock-store-2",
			Name:        "Moda Rio",
			Description: "Roupas e acessórios direto do Rio",
			LogoURL:     "https://placehold.co/200x200?text=ModaRio",
			BannerURL:   "https://placehold.co/1200x300?text=ModaRio",
			IsActive:    true,
			SellerID:    "mock-seller-2",
			Seller: &model.Seller{
				ID:        "mock-seller-2",
				UserID:    us[1].ID,
				User:      &us[1],
				CreatedAt: seededAt,
				UpdatedAt: seededAt,
			},
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
	}
}

func products() []model.Product {
	ss := stores()
	return []model.Product{
		{
			ID:          "mock-product-1",
			Title:       "iPhone 14 Pro 256GB",
			Description: "Aparelho em perfeito estado, bateria 92%, acompanha caixa e cabo",
			Price:       decimal.RequireFromString("7999.99"),
			Currency:    "BRL",
			Category:    "eletronicos",
			Condition:   "USED",
			IsActive:    true,
			Images: []model.ProductImage{
				{ID: "mock-image-1", ProductID: "mock-product-1", URL: "https://placehold.co/800x800?text=iPhone+1", Alt: "iPhone 14 Pro frente", Order: 0},
				{ID: "mock-image-2", ProductID: "mock-product-1", URL: "https://placehold.co/800x800?text=iPhone+2", Alt: "iPhone 14 Pro verso", Order: 1},
			},
			StoreID:   ss[0].ID,
			Store:     &ss[0],
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			ID:          "mock-product-2",
			Title:       "Notebook Dell Inspiron 15",
			Description: "Intel i7, 16GB RAM, SSD 512GB",
			Price:       decimal.RequireFromString("4599.00"),
			Currency:    "BRL",
			Category:    "eletronicos",
			Condition:   "NEW",
			IsActive:    true,
			Images: []model.ProductImage{
				{ID: "mock-image-3", ProductID: "mock-product-2", URL: "https://placehold.co/800x800?text=Notebook", Alt: "Notebook Dell aberto", Order: 0},
			},
			StoreID:   ss[0].ID,
			Store:     &ss[0],
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			ID:          "mock-product-3",
			Title:       "Vestido Floral Midi",
			Description: "Tecido leve, tamanhos P ao GG",
			Price:       decimal.RequireFromString("189.90"),
			Currency:    "BRL",
			Category:    "moda",
			Condition:   "NEW",
			IsActive:    true,
			Images: []model.ProductImage{
				{ID: "mock-image-4", ProductID: "mock-product-3", URL: "https://placehold.co/800x800?text=Vestido", Alt: "Vestido floral", Order: 0},
			},
			StoreID:   ss[1].ID,
			Store:     &ss[1],
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
		{
			ID:          "mock-product-4",
			Title:       "Tênis Casual Couro",
			Description: "Couro legítimo, solado de borracha",
			Price:       decimal.RequireFromString("249.00"),
			Currency:    "BRL",
			Category:    "moda",
			Condition:   "NEW",
			IsActive:    true,
			Images: []model.ProductImage{
				{ID: "mock-image-5", ProductID: "mock-product-4", URL: "https://placehold.co/800x800?text=Tenis", Alt: "Tênis casual", Order: 0},
			},
			StoreID:   ss[1].ID,
			Store:     &ss[1],
			CreatedAt: seededAt,
			UpdatedAt: seededAt,
		},
	}
}
