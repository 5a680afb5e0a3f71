package repo

import (
	"encoding/json"
	"fmt"

	"cafe-orders/internal/domain"
)

const (
	orderColumns    = "id, table_name, items, total_amount, status, notes, cashier_id, created_at, updated_at"
	productColumns  = "id, name, price, category, description, is_available"
	activityColumns = "id, ts, role, action, details, target_id"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (domain.Order, error) {
	var (
		o      domain.Order
		items  string
		status string
	)
	if err := row.Scan(&o.ID, &o.Table, &items, &o.TotalAmount, &status, &o.Notes, &o.CashierID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return domain.Order{}, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", o.ID, err)
	}
	o.Status = st
	if err := json.Unmarshal([]byte(items), &o.Items); err != nil {
		return domain.Order{}, fmt.Errorf("order %s items: %w", o.ID, err)
	}
	return o, nil
}

func encodeItems(lines []domain.OrderLine) (string, error) {
	b, err := json.Marshal(lines)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(b), nil
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var p domain.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category, &p.Description, &p.IsAvailable)
	return p, err
}

func scanActivity(row rowScanner) (domain.ActivityEntry, error) {
	var (
		e    domain.ActivityEntry
		role string
		act  string
	)
	if err := row.Scan(&e.ID, &e.Timestamp, &role, &act, &e.Details, &e.TargetID); err != nil {
		return domain.ActivityEntry{}, err
	}
	e.Role = domain.Role(role)
	e.Action = domain.ActivityAction(act)
	return e, nil
}

func statusStrings(ss []domain.OrderStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
