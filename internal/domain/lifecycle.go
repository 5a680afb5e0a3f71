package domain

import "fmt"

var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:   {OrderPreparing, OrderCancelled},
	OrderPreparing: {OrderReady, OrderCancelled},
	OrderReady:     {OrderServed, OrderCancelled},
	OrderServed:    {OrderPaid, OrderCancelled},
}

// CanTransition reports whether the lifecycle allows moving from one status to another.
// Requests for the current status are not transitions.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func CheckTransition(from, to OrderStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

// NextStatuses returns the statuses reachable from s in one step.
func NextStatuses(s OrderStatus) []OrderStatus {
	return append([]OrderStatus(nil), transitions[s]...)
}

type edge struct{ from, to OrderStatus }

var kitchenEdges = []edge{
	{OrderPending, OrderPreparing},
	{OrderPreparing, OrderReady},
}

var authority = map[Role][]edge{
	RoleKitchen: kitchenEdges,
	RoleBarista: kitchenEdges,
	RoleWaiter:  {{OrderReady, OrderServed}},
	RoleCashier: {{OrderServed, OrderPaid}},
}

// Authorize checks the transition against the lifecycle first and then against
// what the role may do. Cashiers may cancel from any non-terminal state and
// admins may perform every legal transition.
func Authorize(role Role, from, to OrderStatus) error {
	if err := CheckTransition(from, to); err != nil {
		return err
	}
	switch {
	case role == RoleAdmin:
		return nil
	case role == RoleCashier && to == OrderCancelled:
		return nil
	}
	for _, e := range authority[role] {
		if e.from == from && e.to == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s cannot move %s -> %s", ErrNotPermitted, role, from, to)
}

func CanCreateOrders(role Role) bool {
	return role == RoleCashier || role == RoleAdmin
}
