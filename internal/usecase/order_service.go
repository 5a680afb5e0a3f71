package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"cafe-orders/internal/clock"
	"cafe-orders/internal/domain"
)

type OrderRepo interface {
	Create(ctx context.Context, d domain.Draft) (domain.Order, error)
	List(ctx context.Context, f domain.Filter) ([]domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, e domain.ActivityEntry) error
}

type TableResolver interface {
	Resolve(name string) (string, error)
}

// OrderService enforces the lifecycle and role authority in front of a store.
// Activity and Tables are optional.
type OrderService struct {
	Repo     OrderRepo
	Activity ActivityRecorder
	Tables   TableResolver
	Clock    clock.Clock
	Log      *slog.Logger
}

func (s *OrderService) CreateOrder(ctx context.Context, actor domain.Session, d domain.Draft) (domain.Order, error) {
	if !domain.CanCreateOrders(actor.Role) {
		return domain.Order{}, fmt.Errorf("%w: %s cannot create orders", domain.ErrNotPermitted, actor.Role)
	}
	if s.Tables != nil && d.Table != "" {
		name, err := s.Tables.Resolve(d.Table)
		if err != nil {
			return domain.Order{}, err
		}
		d.Table = name
	}
	if d.CashierID == "" {
		d.CashierID = string(actor.Role)
	}
	o, err := s.Repo.Create(ctx, d)
	if err != nil {
		return domain.Order{}, err
	}
	s.logger().Info("order created", "id", o.ID, "table", o.Table, "total", o.TotalAmount.StringFixed(2))
	s.record(ctx, actor.Role, domain.ActionOrderCreated, o.ID,
		fmt.Sprintf("table %s, %d lines, total %s", o.Table, len(o.Items), o.TotalAmount.StringFixed(2)))
	return o, nil
}

func (s *OrderService) ListOrders(ctx context.Context, f domain.Filter) ([]domain.Order, error) {
	return s.Repo.List(ctx, f)
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.Repo.Get(ctx, id)
}

// UpdateOrderStatus checks the move against the order's current status before
// writing. Concurrent writers are not serialized; the last write wins.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor domain.Session, id string, to domain.OrderStatus) (domain.Order, error) {
	cur, err := s.Repo.Get(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	if err := domain.Authorize(actor.Role, cur.Status, to); err != nil {
		return domain.Order{}, err
	}
	o, err := s.Repo.UpdateStatus(ctx, id, to)
	if err != nil {
		return domain.Order{}, err
	}
	s.logger().Info("order status changed", "id", id, "from", cur.Status, "to", to, "role", actor.Role)
	action := domain.ActionOrderStatusChanged
	if to == domain.OrderCancelled {
		action = domain.ActionOrderCancelled
	}
	s.record(ctx, actor.Role, action, id, fmt.Sprintf("table %s: %s -> %s", o.Table, cur.Status, to))
	return o, nil
}

func (s *OrderService) record(ctx context.Context, role domain.Role, action domain.ActivityAction, target, details string) {
	if s.Activity == nil {
		return
	}
	e := domain.ActivityEntry{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Timestamp: s.now(),
		Role:      role,
		Action:    action,
		Details:   details,
		TargetID:  target,
	}
	if err := s.Activity.Record(ctx, e); err != nil {
		s.logger().Warn("activity not recorded", "action", action, "target", target, "err", err)
	}
}

func (s *OrderService) now() int64 {
	if s.Clock == nil {
		return clock.Millis(clock.NewSystem())
	}
	return clock.Millis(s.Clock)
}

func (s *OrderService) logger() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}
