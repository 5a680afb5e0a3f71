package domain

import "github.com/shopspring/decimal"

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Description string          `json:"description,omitempty"`
	IsAvailable bool            `json:"isAvailable"`
}

type ProductFilter struct {
	AvailableOnly bool
	Category      string
}

func (f ProductFilter) Matches(p Product) bool {
	if f.AvailableOnly && !p.IsAvailable {
		return false
	}
	return f.Category == "" || f.Category == p.Category
}
