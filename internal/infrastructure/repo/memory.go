package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/pricing"
)

// MemoryStore is an in-process order store with its own product catalog.
type MemoryStore struct {
	opts options

	mu       sync.RWMutex
	orders   map[string]*domain.Order
	seq      []string
	products map[string]domain.Product
	catalog  []string
}

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:     buildOptions(opts),
		orders:   make(map[string]*domain.Order),
		products: make(map[string]domain.Product),
	}
}

func (r *MemoryStore) PutProduct(_ context.Context, p domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		r.catalog = append(r.catalog, p.ID)
	}
	r.products[p.ID] = p
	return nil
}

func (r *MemoryStore) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	delete(r.products, id)
	for i, v := range r.catalog {
		if v == id {
			r.catalog = append(r.catalog[:i], r.catalog[i+1:]...)
			break
		}
	}
	return nil
}

func (r *MemoryStore) ResolveProduct(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	return p, nil
}

func (r *MemoryStore) ListProducts(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Product, 0, len(r.catalog))
	for _, id := range r.catalog {
		if p := r.products[id]; f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *MemoryStore) Create(ctx context.Context, d domain.Draft) (domain.Order, error) {
	lines, total, err := pricing.Snapshot(ctx, r, d)
	if err != nil {
		return domain.Order{}, err
	}
	now := r.opts.clock.Now().UnixMilli()
	o := &domain.Order{
		ID:          NewID(),
		Table:       d.Table,
		Items:       lines,
		TotalAmount: total,
		Status:      domain.OrderPending,
		Notes:       d.Notes,
		CashierID:   d.CashierID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = o
	r.seq = append(r.seq, o.ID)
	return o.Clone(), nil
}

func (r *MemoryStore) List(_ context.Context, f domain.Filter) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Order, 0, len(r.seq))
	for i := len(r.seq) - 1; i >= 0; i-- {
		o := r.orders[r.seq[i]]
		if f.Matches(*o) {
			out = append(out, o.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func (r *MemoryStore) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return o.Clone(), nil
}

// UpdateStatus overwrites the status without consulting the lifecycle.
func (r *MemoryStore) UpdateStatus(_ context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return domain.Order{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	o.Status = status
	o.UpdatedAt = r.opts.clock.Now().UnixMilli()
	return o.Clone(), nil
}
