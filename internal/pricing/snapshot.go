// Package pricing freezes catalog prices into order lines.
package pricing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cafe-orders/internal/domain"
)

// Resolver looks up the live catalog entry for a product id. Implementations
// return an error wrapping domain.ErrProductNotFound when the id is unknown.
type Resolver interface {
	ResolveProduct(ctx context.Context, id string) (domain.Product, error)
}

// Snapshot validates the draft, resolves every line and returns the frozen lines
// with their total. Any unresolvable or unavailable product aborts the whole
// snapshot; no partial result is returned.
func Snapshot(ctx context.Context, r Resolver, d domain.Draft) ([]domain.OrderLine, decimal.Decimal, error) {
	if err := d.Validate(); err != nil {
		return nil, decimal.Zero, err
	}
	lines := make([]domain.OrderLine, 0, len(d.Items))
	for _, it := range d.Items {
		p, err := r.ResolveProduct(ctx, it.ProductID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if !p.IsAvailable {
			return nil, decimal.Zero, fmt.Errorf("%w: %s", domain.ErrProductUnavailable, p.Name)
		}
		l := domain.OrderLine{
			ProductID:    p.ID,
			ProductName:  p.Name,
			PriceAtOrder: p.Price,
			Quantity:     it.Quantity,
		}
		lines = append(lines, l)
	}
	return lines, Total(lines), nil
}

// Total sums already frozen lines.
func Total(lines []domain.OrderLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}
