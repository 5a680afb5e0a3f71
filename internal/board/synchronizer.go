// Package board keeps a role's view of the order store current by polling and
// applies status changes optimistically.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"cafe-orders/internal/domain"
)

// Store is the part of an order store a board needs.
type Store interface {
	List(ctx context.Context, f domain.Filter) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
}

type SortOrder int

const (
	OldestCreatedFirst SortOrder = iota
	OldestUpdatedFirst
	NewestCreatedFirst
)

var ErrRunning = errors.New("synchronizer already running")

type Config struct {
	Role     domain.Role
	Filter   domain.Filter
	Sort     SortOrder
	Interval time.Duration
}

type Option func(*Synchronizer)

func WithLogger(l *slog.Logger) Option {
	return func(s *Synchronizer) { s.log = l }
}

// WithOnChange registers a callback that receives a copy of the view after
// every change. It may be called from the polling goroutine and from callers
// of Transition concurrently.
func WithOnChange(fn func([]domain.Order)) Option {
	return func(s *Synchronizer) { s.onChange = fn }
}

// WithOnAlert registers a callback for failed status writes.
func WithOnAlert(fn func(error)) Option {
	return func(s *Synchronizer) { s.onAlert = fn }
}

type Synchronizer struct {
	cfg      Config
	store    Store
	log      *slog.Logger
	onChange func([]domain.Order)
	onAlert  func(error)

	mu      sync.Mutex
	view    []domain.Order
	gen     uint64
	loaded  bool
	pollErr error

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New(cfg Config, store Store, opts ...Option) *Synchronizer {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Second
	}
	s := &Synchronizer{cfg: cfg, store: store, log: slog.Default()}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With("board", string(cfg.Role))
	return s
}

func (s *Synchronizer) Config() Config { return s.cfg }

// Start polls immediately and then once per interval until ctx is done or
// Stop is called.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return ErrRunning
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(ctx, s.done)
	return nil
}

// Stop cancels polling and waits for the loop to exit. A poll in flight is
// discarded.
func (s *Synchronizer) Stop() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Synchronizer) Running() bool {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.cancel != nil
}

func (s *Synchronizer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	s.poll(ctx)
	t := time.NewTicker(s.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.poll(ctx)
		}
	}
}

func (s *Synchronizer) poll(ctx context.Context) {
	if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		s.log.Warn("poll failed", "err", err)
	}
}

// Refresh fetches the role's orders and replaces the view with them. On
// failure the current view is kept.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	orders, err := s.store.List(ctx, s.cfg.Filter)
	if err != nil {
		s.mu.Lock()
		s.pollErr = err
		s.mu.Unlock()
		return fmt.Errorf("%s poll: %w", s.cfg.Role, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	view := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if s.cfg.Filter.Matches(o) {
			view = append(view, o)
		}
	}
	sortOrders(view, s.cfg.Sort)

	s.mu.Lock()
	s.view = view
	s.gen++
	s.loaded = true
	s.pollErr = nil
	snap := s.copyLocked()
	s.mu.Unlock()
	s.notify(snap)
	return nil
}

// Transition moves an order shown on this board to a new status. The view
// changes before the store is called; if the write fails the order is put
// back as it was unless a poll has replaced the view in the meantime.
func (s *Synchronizer) Transition(ctx context.Context, id string, to domain.OrderStatus) error {
	s.mu.Lock()
	idx := s.indexLocked(id)
	if idx < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s is not on the %s board", domain.ErrOrderNotFound, id, s.cfg.Role)
	}
	prev := s.view[idx].Clone()
	if err := domain.Authorize(s.cfg.Role, prev.Status, to); err != nil {
		s.mu.Unlock()
		return err
	}
	gen := s.gen
	keep := s.cfg.Filter.HasStatus(to)
	if keep {
		s.view[idx].Status = to
	} else {
		s.view = append(s.view[:idx], s.view[idx+1:]...)
	}
	snap := s.copyLocked()
	s.mu.Unlock()
	s.notify(snap)

	confirmed, err := s.store.UpdateStatus(ctx, id, to)
	if err != nil {
		s.mu.Lock()
		restored := gen == s.gen
		if restored {
			s.restoreLocked(idx, prev, to)
			snap = s.copyLocked()
		}
		s.mu.Unlock()
		if restored {
			s.notify(snap)
		}
		err = fmt.Errorf("mark order %s %s: %w", id, to, err)
		s.log.Error("status update failed", "id", id, "to", to, "restored", restored, "err", err)
		if s.onAlert != nil {
			s.onAlert(err)
		}
		return err
	}

	s.mu.Lock()
	changed := false
	if i := s.indexLocked(id); i >= 0 {
		if s.cfg.Filter.Matches(confirmed) {
			s.view[i] = confirmed
		} else {
			s.view = append(s.view[:i], s.view[i+1:]...)
		}
		changed = true
	}
	snap = s.copyLocked()
	s.mu.Unlock()
	if changed {
		s.notify(snap)
	}
	return nil
}

func (s *Synchronizer) restoreLocked(idx int, prev domain.Order, to domain.OrderStatus) {
	if i := s.indexLocked(prev.ID); i >= 0 {
		if s.view[i].Status == to {
			s.view[i] = prev
		}
		return
	}
	if idx > len(s.view) {
		idx = len(s.view)
	}
	s.view = append(s.view, domain.Order{})
	copy(s.view[idx+1:], s.view[idx:])
	s.view[idx] = prev
	// idx is stale if other orders left the view while the write was pending
	sortOrders(s.view, s.cfg.Sort)
}

func (s *Synchronizer) indexLocked(id string) int {
	for i := range s.view {
		if s.view[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Synchronizer) copyLocked() []domain.Order {
	out := make([]domain.Order, len(s.view))
	for i, o := range s.view {
		out[i] = o.Clone()
	}
	return out
}

func (s *Synchronizer) notify(view []domain.Order) {
	if s.onChange != nil {
		s.onChange(view)
	}
}

// View returns a copy of the orders currently shown.
func (s *Synchronizer) View() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyLocked()
}

// Loaded reports whether at least one poll has succeeded.
func (s *Synchronizer) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// LastPollError is the error of the most recent poll, nil after a success.
func (s *Synchronizer) LastPollError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollErr
}

func sortOrders(orders []domain.Order, by SortOrder) {
	var less func(a, b domain.Order) bool
	switch by {
	case OldestUpdatedFirst:
		less = func(a, b domain.Order) bool { return a.UpdatedAt < b.UpdatedAt }
	case NewestCreatedFirst:
		less = func(a, b domain.Order) bool { return a.CreatedAt > b.CreatedAt }
	default:
		less = func(a, b domain.Order) bool { return a.CreatedAt < b.CreatedAt }
	}
	sort.SliceStable(orders, func(i, j int) bool { return less(orders[i], orders[j]) })
}
