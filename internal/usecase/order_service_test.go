package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/clock"
	"cafe-orders/internal/domain"
	"cafe-orders/internal/infrastructure/repo"
	"cafe-orders/internal/tables"
)

var (
	cashier = domain.Session{Role: domain.RoleCashier}
	kitchen = domain.Session{Role: domain.RoleKitchen}
	waiter  = domain.Session{Role: domain.RoleWaiter}
)

type failingActivity struct{ calls int }

func (f *failingActivity) Record(context.Context, domain.ActivityEntry) error {
	f.calls++
	return errors.New("disk full")
}

func newService(t *testing.T) (*OrderService, *repo.MemoryStore, *repo.MemoryActivityLog, *clock.Manual) {
	t.Helper()
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	store := repo.NewMemoryStore(repo.WithClock(clk))
	require.NoError(t, store.PutProduct(ctx, domain.Product{ID: "a", Name: "ProductA", Price: decimal.RequireFromString("45.00"), IsAvailable: true}))
	require.NoError(t, store.PutProduct(ctx, domain.Product{ID: "b", Name: "ProductB", Price: decimal.RequireFromString("30.00"), IsAvailable: true}))
	reg, err := tables.New("7", "Bar")
	require.NoError(t, err)
	log := repo.NewMemoryActivityLog(0)
	return &OrderService{Repo: store, Activity: log, Tables: reg, Clock: clk}, store, log, clk
}

func draft7() domain.Draft {
	return domain.Draft{Table: "7", Items: []domain.DraftLine{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, log, _ := newService(t)

	o, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Equal(t, "120.00", o.TotalAmount.StringFixed(2))
	assert.Equal(t, "cashier", o.CashierID)

	entries, err := log.ListActivity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionOrderCreated, entries[0].Action)
	assert.Equal(t, o.ID, entries[0].TargetID)
	assert.Contains(t, entries[0].Details, "120.00")
}

func TestCreateOrderChecks(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newService(t)

	_, err := svc.CreateOrder(ctx, kitchen, draft7())
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	d := draft7()
	d.Table = "patio"
	_, err = svc.CreateOrder(ctx, cashier, d)
	assert.ErrorIs(t, err, domain.ErrUnknownTable)

	d.Table = "bar"
	o, err := svc.CreateOrder(ctx, cashier, d)
	require.NoError(t, err)
	assert.Equal(t, "Bar", o.Table)

	all, err := store.List(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUpdateOrderStatusFullLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, _, log, clk := newService(t)
	o, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)

	steps := []struct {
		actor domain.Session
		to    domain.OrderStatus
	}{
		{kitchen, domain.OrderPreparing},
		{kitchen, domain.OrderReady},
		{waiter, domain.OrderServed},
		{cashier, domain.OrderPaid},
	}
	for _, st := range steps {
		clk.Advance(time.Minute)
		up, err := svc.UpdateOrderStatus(ctx, st.actor, o.ID, st.to)
		require.NoError(t, err)
		assert.Equal(t, st.to, up.Status)
		assert.Equal(t, clk.Now().UnixMilli(), up.UpdatedAt)
	}

	entries, err := log.ListActivity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, domain.ActionOrderStatusChanged, entries[0].Action)
	assert.Contains(t, entries[0].Details, "served -> paid")
}

func TestIllegalTransitionLeavesOrderUntouched(t *testing.T) {
	ctx := context.Background()
	svc, store, _, clk := newService(t)
	o, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)

	clk.Advance(time.Minute)
	_, err = svc.UpdateOrderStatus(ctx, kitchen, o.ID, domain.OrderServed)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = svc.UpdateOrderStatus(ctx, waiter, o.ID, domain.OrderPreparing)
	assert.ErrorIs(t, err, domain.ErrNotPermitted)

	_, err = svc.UpdateOrderStatus(ctx, kitchen, o.ID, domain.OrderPending)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := store.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderPending, got.Status)
	assert.Equal(t, o.UpdatedAt, got.UpdatedAt)

	_, err = svc.UpdateOrderStatus(ctx, kitchen, "nope", domain.OrderPreparing)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestRepeatedTransitionIsRejected(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService(t)
	o, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)

	first, err := svc.UpdateOrderStatus(ctx, kitchen, o.ID, domain.OrderPreparing)
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, kitchen, o.ID, domain.OrderPreparing)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, first.UpdatedAt, got.UpdatedAt)
}

func TestCancelRecordsCancellation(t *testing.T) {
	ctx := context.Background()
	svc, _, log, _ := newService(t)
	o, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)

	_, err = svc.UpdateOrderStatus(ctx, cashier, o.ID, domain.OrderCancelled)
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, cashier, o.ID, domain.OrderPreparing)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	entries, err := log.ListActivity(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ActionOrderCancelled, entries[0].Action)
}

func TestActivityFailureDoesNotFailWrite(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService(t)
	fa := &failingActivity{}
	svc.Activity = fa

	o, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, kitchen, o.ID, domain.OrderPreparing)
	require.NoError(t, err)
	assert.Equal(t, 2, fa.calls)
}

func TestListOrdersFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, _, clk := newService(t)
	a, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)
	clk.Advance(time.Second)
	b, err := svc.CreateOrder(ctx, cashier, draft7())
	require.NoError(t, err)
	_, err = svc.UpdateOrderStatus(ctx, kitchen, a.ID, domain.OrderPreparing)
	require.NoError(t, err)

	pending, err := svc.ListOrders(ctx, domain.Filter{Statuses: []domain.OrderStatus{domain.OrderPending}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, b.ID, pending[0].ID)
}
