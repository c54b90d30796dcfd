package model

import "marketplace-api/internal/apperror"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ProductFilter struct {
	Category string
	StoreID  string
	Limit    int
	Offset   int
}

// Normalize applies the default page size and rejects out-of-range paging.
func (f *ProductFilter) Normalize() error {
	if f.Limit == 0 {
		f.Limit = DefaultPageSize
	}
	if f.Limit < 0 || f.Limit > MaxPageSize {
		return &apperror.ValidationError{Field: "limit", Message: "must be between 1 and 100"}
	}
	if f.Offset < 0 {
		return &apperror.ValidationError{Field: "offset", Message: "must be >= 0"}
	}
	return nil
}

// Match reports whether p passes the filter. Paging is not considered.
func (f ProductFilter) Match(p *Product) bool {
	if !p.IsActive {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.StoreID != "" && p.StoreID != f.StoreID {
		return false
	}
	return true
}
