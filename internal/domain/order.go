package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderServed    OrderStatus = "served"
	OrderPaid      OrderStatus = "paid"
	OrderCancelled OrderStatus = "cancelled"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderServed, OrderPaid, OrderCancelled}

// ActiveStatuses are the states an order can still leave.
var ActiveStatuses = []OrderStatus{OrderPending, OrderPreparing, OrderReady, OrderServed}

func ParseStatus(s string) (OrderStatus, error) {
	v := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, st := range AllStatuses {
		if st == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (s OrderStatus) MarshalText() ([]byte, error) {
	return []byte(s), nil
}

func (s *OrderStatus) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return s == OrderPaid || s == OrderCancelled
}

// OrderLine is a frozen copy of a product at the moment the order was placed.
type OrderLine struct {
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	PriceAtOrder decimal.Decimal `json:"priceAtOrder"`
	Quantity     int             `json:"quantity"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.PriceAtOrder.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Order struct {
	ID          string          `json:"id"`
	Table       string          `json:"table"`
	Items       []OrderLine     `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Status      OrderStatus     `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CashierID   string          `json:"cashierId,omitempty"`
	CreatedAt   int64           `json:"createdAt"`
	UpdatedAt   int64           `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with o.
func (o Order) Clone() Order {
	c := o
	c.Items = append([]OrderLine(nil), o.Items...)
	return c
}

type DraftLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Draft is an order that has not been priced yet.
type Draft struct {
	Table     string      `json:"table"`
	Notes     string      `json:"notes,omitempty"`
	CashierID string      `json:"cashierId,omitempty"`
	Items     []DraftLine `json:"items"`
}

func (d Draft) Validate() error {
	if strings.TrimSpace(d.Table) == "" {
		return fmt.Errorf("%w: table required", ErrInvalidDraft)
	}
	if len(d.Items) == 0 {
		return fmt.Errorf("%w: no items", ErrInvalidDraft)
	}
	for _, it := range d.Items {
		if it.ProductID == "" {
			return fmt.Errorf("%w: item without product", ErrInvalidDraft)
		}
		if it.Quantity < 1 {
			return fmt.Errorf("%w: quantity %d for %s", ErrInvalidDraft, it.Quantity, it.ProductID)
		}
	}
	return nil
}

// Filter selects orders by status and table. Zero values match everything.
type Filter struct {
	Statuses []OrderStatus
	Table    string
}

func (f Filter) Matches(o Order) bool {
	if f.Table != "" && f.Table != o.Table {
		return false
	}
	return f.HasStatus(o.Status)
}

func (f Filter) HasStatus(s OrderStatus) bool {
	if len(f.Statuses) == 0 {
		return true
	}
	for _, st := range f.Statuses {
		if st == s {
			return true
		}
	}
	return false
}
