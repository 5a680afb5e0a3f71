package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-orders/internal/clock"
	"cafe-orders/internal/domain"
)

type orderStore interface {
	ProductStore
	ResolveProduct(ctx context.Context, id string) (domain.Product, error)
	Create(ctx context.Context, d domain.Draft) (domain.Order, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
}

var contractStart = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seedAB(t *testing.T, s orderStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.PutProduct(ctx, domain.Product{ID: "a", Name: "ProductA", Price: decimal.RequireFromString("45.00"), Category: "hot", IsAvailable: true}))
	require.NoError(t, s.PutProduct(ctx, domain.Product{ID: "b", Name: "ProductB", Price: decimal.RequireFromString("30.00"), Category: "cold", IsAvailable: true}))
}

func draft(table string) domain.Draft {
	return domain.Draft{Table: table, Notes: "no sugar", Items: []domain.DraftLine{{ProductID: "a", Quantity: 2}, {ProductID: "b", Quantity: 1}}}
}

func assertSameOrder(t *testing.T, want, got domain.Order) {
	t.Helper()
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Table, got.Table)
	assert.Equal(t, want.Status, got.Status)
	assert.Equal(t, want.Notes, got.Notes)
	assert.Equal(t, want.CreatedAt, got.CreatedAt)
	assert.Equal(t, want.UpdatedAt, got.UpdatedAt)
	assert.True(t, want.TotalAmount.Equal(got.TotalAmount), "total %s != %s", want.TotalAmount, got.TotalAmount)
	require.Len(t, got.Items, len(want.Items))
	for i := range want.Items {
		assert.Equal(t, want.Items[i].ProductID, got.Items[i].ProductID)
		assert.Equal(t, want.Items[i].ProductName, got.Items[i].ProductName)
		assert.Equal(t, want.Items[i].Quantity, got.Items[i].Quantity)
		assert.True(t, want.Items[i].PriceAtOrder.Equal(got.Items[i].PriceAtOrder))
	}
}

func ids(orders []domain.Order) []string {
	out := make([]string, len(orders))
	for i, o := range orders {
		out[i] = o.ID
	}
	return out
}

func runStoreContract(t *testing.T, open func(t *testing.T, opts ...Option) orderStore) {
	ctx := context.Background()

	t.Run("create snapshots prices", func(t *testing.T) {
		clk := clock.NewManual(contractStart)
		s := open(t, WithClock(clk))
		seedAB(t, s)

		o, err := s.Create(ctx, draft("7"))
		require.NoError(t, err)
		assert.NotEmpty(t, o.ID)
		assert.Equal(t, domain.OrderPending, o.Status)
		assert.Equal(t, "120.00", o.TotalAmount.StringFixed(2))
		assert.Equal(t, contractStart.UnixMilli(), o.CreatedAt)
		assert.Equal(t, o.CreatedAt, o.UpdatedAt)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "ProductA", o.Items[0].ProductName)

		require.NoError(t, s.PutProduct(ctx, domain.Product{ID: "a", Name: "Renamed", Price: decimal.RequireFromString("99.00"), IsAvailable: true}))
		got, err := s.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, "ProductA", got.Items[0].ProductName)
		assert.Equal(t, "45.00", got.Items[0].PriceAtOrder.StringFixed(2))
		assert.Equal(t, "120.00", got.TotalAmount.StringFixed(2))
	})

	t.Run("missing product persists nothing", func(t *testing.T) {
		s := open(t)
		seedAB(t, s)
		d := draft("7")
		d.Items = append(d.Items, domain.DraftLine{ProductID: "ghost", Quantity: 1})
		_, err := s.Create(ctx, d)
		assert.ErrorIs(t, err, domain.ErrProductNotFound)

		all, err := s.List(ctx, domain.Filter{})
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("list is newest first and filtered", func(t *testing.T) {
		clk := clock.NewManual(contractStart)
		s := open(t, WithClock(clk))
		seedAB(t, s)

		first, err := s.Create(ctx, draft("1"))
		require.NoError(t, err)
		clk.Advance(time.Second)
		second, err := s.Create(ctx, draft("2"))
		require.NoError(t, err)
		clk.Advance(time.Second)
		third, err := s.Create(ctx, draft("1"))
		require.NoError(t, err)

		all, err := s.List(ctx, domain.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))
		assertSameOrder(t, third, all[0])

		byTable, err := s.List(ctx, domain.Filter{Table: "1"})
		require.NoError(t, err)
		assert.Equal(t, []string{third.ID, first.ID}, ids(byTable))

		_, err = s.UpdateStatus(ctx, second.ID, domain.OrderPreparing)
		require.NoError(t, err)
		kitchen, err := s.List(ctx, domain.Filter{Statuses: []domain.OrderStatus{domain.OrderPreparing}})
		require.NoError(t, err)
		assert.Equal(t, []string{second.ID}, ids(kitchen))

		none, err := s.List(ctx, domain.Filter{Statuses: []domain.OrderStatus{domain.OrderPaid}})
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("same millisecond keeps insertion order", func(t *testing.T) {
		s := open(t, WithClock(clock.NewFixed(contractStart)))
		seedAB(t, s)
		a, err := s.Create(ctx, draft("1"))
		require.NoError(t, err)
		b, err := s.Create(ctx, draft("1"))
		require.NoError(t, err)
		all, err := s.List(ctx, domain.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{b.ID, a.ID}, ids(all))
	})

	t.Run("update status", func(t *testing.T) {
		clk := clock.NewManual(contractStart)
		s := open(t, WithClock(clk))
		seedAB(t, s)
		o, err := s.Create(ctx, draft("3"))
		require.NoError(t, err)

		clk.Advance(90 * time.Second)
		up, err := s.UpdateStatus(ctx, o.ID, domain.OrderPreparing)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderPreparing, up.Status)
		assert.Equal(t, o.CreatedAt, up.CreatedAt)
		assert.Equal(t, contractStart.Add(90*time.Second).UnixMilli(), up.UpdatedAt)

		// the store does not judge legality
		up, err = s.UpdateStatus(ctx, o.ID, domain.OrderPending)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderPending, up.Status)

		_, err = s.UpdateStatus(ctx, "missing", domain.OrderReady)
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
		_, err = s.UpdateStatus(ctx, o.ID, domain.OrderStatus("lost"))
		assert.ErrorIs(t, err, domain.ErrInvalidStatus)
		_, err = s.Get(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	})

	t.Run("sub-cent prices survive a round trip", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.PutProduct(ctx, domain.Product{ID: "gram", Name: "Saffron", Price: decimal.RequireFromString("12.345"), IsAvailable: true}))
		p, err := s.ResolveProduct(ctx, "gram")
		require.NoError(t, err)
		assert.Equal(t, "12.345", p.Price.String())

		o, err := s.Create(ctx, domain.Draft{Table: "2", Items: []domain.DraftLine{{ProductID: "gram", Quantity: 3}}})
		require.NoError(t, err)
		want := decimal.RequireFromString("37.035")
		assert.True(t, o.TotalAmount.Equal(want), o.TotalAmount.String())

		got, err := s.Get(ctx, o.ID)
		require.NoError(t, err)
		assert.True(t, got.TotalAmount.Equal(want), got.TotalAmount.String())
		assert.True(t, got.Items[0].Subtotal().Equal(got.TotalAmount))

		listed, err := s.List(ctx, domain.Filter{Table: "2"})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		assert.True(t, listed[0].TotalAmount.Equal(want), listed[0].TotalAmount.String())
	})

	t.Run("products", func(t *testing.T) {
		s := open(t)
		seeded, err := Seed(ctx, s)
		require.NoError(t, err)
		assert.True(t, seeded)
		seeded, err = Seed(ctx, s)
		require.NoError(t, err)
		assert.False(t, seeded)

		all, err := s.ListProducts(ctx, domain.ProductFilter{})
		require.NoError(t, err)
		require.Len(t, all, len(SeedProducts()))
		assert.Equal(t, "turk-kahvesi", all[0].ID)

		p := all[1]
		p.IsAvailable = false
		require.NoError(t, s.PutProduct(ctx, p))
		avail, err := s.ListProducts(ctx, domain.ProductFilter{AvailableOnly: true})
		require.NoError(t, err)
		assert.Len(t, avail, len(all)-1)

		_, err = s.ResolveProduct(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
		got, err := s.ResolveProduct(ctx, "latte")
		require.NoError(t, err)
		assert.Equal(t, "45.00", got.Price.StringFixed(2))
	})
}
