package model

import (
	"marketplace-api/internal/apperror"

	"github.com/shopspring/decimal"
)

func (p *Plan) Validate() error {
	if p.Name == "" {
		return &apperror.ValidationError{Field: "name", Message: "is required"}
	}
	if p.Price.IsNegative() {
		return &apperror.ValidationError{Field: "price", Message: "must be >= 0"}
	}
	if len(p.Currency) != 3 {
		return &apperror.ValidationError{Field: "currency", Message: "must be a 3 letter ISO code"}
	}
	if p.AdLimit < 0 || p.PhotoLimit < 0 {
		return &apperror.ValidationError{Field: "limits", Message: "must be >= 0"}
	}
	return nil
}

// DefaultPlans is the plan catalog seeded into an empty database.
func DefaultPlans() []Plan {
	return []Plan{
		{
			ID:          "plan-free",
			Name:        "Gratuito",
			Description: "Para quem está começando a vender",
			Price:       decimal.Zero,
			Currency:    "BRL",
			AdLimit:     3,
			PhotoLimit:  1,
			Features:    []string{"3 anúncios ativos", "1 foto por anúncio", "Contato via WhatsApp"},
			IsActive:    true,
			Order:       1,
		},
		{
			ID:          "plan-basic",
			Name:        "Básico",
			Description: "Mais visibilidade para sua loja",
			Price:       decimal.RequireFromString("29.90"),
			Currency:    "BRL",
			AdLimit:     20,
			PhotoLimit:  5,
			Features:    []string{"20 anúncios ativos", "5 fotos por anúncio", "Contato via WhatsApp", "Loja personalizada"},
			IsActive:    true,
			Order:       2,
		},
		{
			ID:          "plan-pro",
			Name:        "Profissional",
			Description: "Para vendedores com alto volume",
			Price:       decimal.RequireFromString("79.90"),
			Currency:    "BRL",
			AdLimit:     100,
			PhotoLimit:  10,
			Features:    []string{"100 anúncios ativos", "10 fotos por anúncio", "Destaque na busca", "Relatórios de visitas", "Suporte prioritário"},
			IsActive:    true,
			Order:       3,
		},
	}
}
