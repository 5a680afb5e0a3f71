package board

import (
	"context"
	"time"

	"cafe-orders/internal/domain"
)

const (
	DefaultKitchenInterval = 15 * time.Second
	DefaultWaiterInterval  = 15 * time.Second
	DefaultCashierInterval = 30 * time.Second
)

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Kitchen shows new and in-progress orders, oldest first.
type Kitchen struct{ *Synchronizer }

func NewKitchen(store Store, interval time.Duration, opts ...Option) *Kitchen {
	return &Kitchen{New(Config{
		Role:     domain.RoleKitchen,
		Filter:   domain.Filter{Statuses: []domain.OrderStatus{domain.OrderPending, domain.OrderPreparing}},
		Sort:     OldestCreatedFirst,
		Interval: orDefault(interval, DefaultKitchenInterval),
	}, store, opts...)}
}

func (k *Kitchen) StartPreparing(ctx context.Context, id string) error {
	return k.Transition(ctx, id, domain.OrderPreparing)
}

// MarkReady hands the order over to the waiters; it leaves this board.
func (k *Kitchen) MarkReady(ctx context.Context, id string) error {
	return k.Transition(ctx, id, domain.OrderReady)
}

// Waiter shows orders waiting to be carried out, longest waiting first.
type Waiter struct{ *Synchronizer }

func NewWaiter(store Store, interval time.Duration, opts ...Option) *Waiter {
	return &Waiter{New(Config{
		Role:     domain.RoleWaiter,
		Filter:   domain.Filter{Statuses: []domain.OrderStatus{domain.OrderReady}},
		Sort:     OldestUpdatedFirst,
		Interval: orDefault(interval, DefaultWaiterInterval),
	}, store, opts...)}
}

func (w *Waiter) MarkServed(ctx context.Context, id string) error {
	return w.Transition(ctx, id, domain.OrderServed)
}

// Cashier shows every open order, newest first, for settling or cancelling.
type Cashier struct{ *Synchronizer }

func NewCashier(store Store, interval time.Duration, opts ...Option) *Cashier {
	return &Cashier{New(Config{
		Role:     domain.RoleCashier,
		Filter:   domain.Filter{Statuses: domain.ActiveStatuses},
		Sort:     NewestCreatedFirst,
		Interval: orDefault(interval, DefaultCashierInterval),
	}, store, opts...)}
}

func (c *Cashier) MarkPaid(ctx context.Context, id string) error {
	return c.Transition(ctx, id, domain.OrderPaid)
}

func (c *Cashier) Cancel(ctx context.Context, id string) error {
	return c.Transition(ctx, id, domain.OrderCancelled)
}
