package cli

import (
	"fmt"
	"io"
	"strings"

	"cafe-orders/internal/domain"
)

// RenderBoard writes a board view as a numbered list. Row numbers are what
// the interactive board commands accept.
func RenderBoard(w io.Writer, title string, orders []domain.Order, nowMillis int64) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(orders))
	if len(orders) == 0 {
		fmt.Fprintln(w, "  no orders")
		return
	}
	fmt.Fprintf(w, "%-3s %-6s %-10s %6s %9s  %s\n", "#", "TABLE", "STATUS", "AGE", "TOTAL", "ITEMS")
	for i, o := range orders {
		fmt.Fprintf(w, "%-3d %-6s %-10s %6s %9s  %s\n",
			i+1, o.Table, o.Status, age(nowMillis-o.CreatedAt), o.TotalAmount.StringFixed(2), itemsSummary(o.Items))
		if o.Notes != "" {
			fmt.Fprintf(w, "    note: %s\n", o.Notes)
		}
	}
}

func RenderOrder(w io.Writer, o domain.Order) {
	fmt.Fprintf(w, "order %s  table %s  %s\n", o.ID, o.Table, o.Status)
	for _, l := range o.Items {
		fmt.Fprintf(w, "  %3d x %-24s %8s %9s\n", l.Quantity, l.ProductName, l.PriceAtOrder.StringFixed(2), l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(w, "  %-30s %18s\n", "total", o.TotalAmount.StringFixed(2))
	if o.Notes != "" {
		fmt.Fprintf(w, "  note: %s\n", o.Notes)
	}
}

func RenderProducts(w io.Writer, products []domain.Product) {
	fmt.Fprintf(w, "%-16s %-28s %8s  %s\n", "ID", "NAME", "PRICE", "CATEGORY")
	for _, p := range products {
		line := fmt.Sprintf("%-16s %-28s %8s  %s", p.ID, p.Name, p.Price.StringFixed(2), p.Category)
		if !p.IsAvailable {
			line += "  (unavailable)"
		}
		fmt.Fprintln(w, line)
	}
}

func age(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	sec := ms / 1000
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	m := sec / 60
	if m < 60 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", m/60, m%60)
}

func itemsSummary(items []domain.OrderLine) string {
	parts := make([]string, 0, len(items))
	for _, l := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", l.Quantity, l.ProductName))
	}
	return strings.Join(parts, ", ")
}
