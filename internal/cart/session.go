// Package cart assembles a draft order on the cashier's screen.
package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/pricing"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrTableRequired   = errors.New("table is required")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

// Creator persists a draft and returns the stored order.
type Creator interface {
	Create(ctx context.Context, d domain.Draft) (domain.Order, error)
}

type TableResolver interface {
	Resolve(name string) (string, error)
}

// Session is a single cashier's cart. It is not safe for concurrent use.
type Session struct {
	tables    TableResolver
	cashierID string
	table     string
	notes     string
	lines     []domain.DraftLine
}

type Option func(*Session)

// WithTables validates table names against a registry.
func WithTables(r TableResolver) Option {
	return func(s *Session) { s.tables = r }
}

func WithCashier(id string) Option {
	return func(s *Session) { s.cashierID = id }
}

func NewSession(opts ...Option) *Session {
	s := &Session{}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Add puts qty more of a product into the cart, merging with an existing line.
func (s *Session) Add(productID string, qty int) error {
	if qty < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, qty)
	}
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity += qty
			return nil
		}
	}
	s.lines = append(s.lines, domain.DraftLine{ProductID: productID, Quantity: qty})
	return nil
}

// SetQuantity replaces a line's quantity; anything below 1 removes the line.
func (s *Session) SetQuantity(productID string, qty int) {
	if qty < 1 {
		s.Remove(productID)
		return
	}
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines[i].Quantity = qty
			return
		}
	}
	s.lines = append(s.lines, domain.DraftLine{ProductID: productID, Quantity: qty})
}

func (s *Session) Remove(productID string) {
	for i := range s.lines {
		if s.lines[i].ProductID == productID {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

func (s *Session) SetTable(name string) error {
	name = strings.TrimSpace(name)
	if name != "" && s.tables != nil {
		canonical, err := s.tables.Resolve(name)
		if err != nil {
			return err
		}
		name = canonical
	}
	s.table = name
	return nil
}

func (s *Session) SetNotes(notes string) { s.notes = strings.TrimSpace(notes) }

func (s *Session) Table() string { return s.table }
func (s *Session) Notes() string { return s.notes }

func (s *Session) Lines() []domain.DraftLine {
	return append([]domain.DraftLine(nil), s.lines...)
}

func (s *Session) Empty() bool { return len(s.lines) == 0 }

// Draft returns the cart as a draft order, or why it cannot be submitted.
func (s *Session) Draft() (domain.Draft, error) {
	if len(s.lines) == 0 {
		return domain.Draft{}, ErrEmptyCart
	}
	if s.table == "" {
		return domain.Draft{}, ErrTableRequired
	}
	return domain.Draft{
		Table:     s.table,
		Notes:     s.notes,
		CashierID: s.cashierID,
		Items:     s.Lines(),
	}, nil
}

// Estimate prices the cart against the live catalog. The order total is fixed
// only when the order is created.
func (s *Session) Estimate(ctx context.Context, r pricing.Resolver) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range s.lines {
		p, err := r.ResolveProduct(ctx, l.ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total, nil
}

// Submit creates the order and clears the cart. On failure the cart is kept
// so the cashier can retry.
func (s *Session) Submit(ctx context.Context, c Creator) (domain.Order, error) {
	d, err := s.Draft()
	if err != nil {
		return domain.Order{}, err
	}
	o, err := c.Create(ctx, d)
	if err != nil {
		return domain.Order{}, err
	}
	s.Reset()
	return o, nil
}

func (s *Session) Reset() {
	s.table = ""
	s.notes = ""
	s.lines = nil
}
