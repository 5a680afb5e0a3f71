package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/pricing"
)

// PostgresStore shares orders between every device of the venue.
type PostgresStore struct {
	db   *sql.DB
	opts options
}

func NewPostgresStore(dsn string, opts ...Option) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	s := &PostgresStore{db: db, opts: buildOptions(opts)}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS products (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			price NUMERIC NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			is_available BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			table_name TEXT NOT NULL,
			items TEXT NOT NULL,
			total_amount NUMERIC NOT NULL,
			status TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			cashier_id TEXT NOT NULL DEFAULT '',
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status, created_at)`,
		`CREATE TABLE IF NOT EXISTS activity (
			seq BIGSERIAL,
			id TEXT PRIMARY KEY,
			ts BIGINT NOT NULL,
			role TEXT NOT NULL,
			action TEXT NOT NULL,
			details TEXT NOT NULL DEFAULT '',
			target_id TEXT NOT NULL DEFAULT ''
		)`,
		// databases created with NUMERIC(12,2) rounded sub-cent prices
		`ALTER TABLE products ALTER COLUMN price TYPE NUMERIC`,
		`ALTER TABLE orders ALTER COLUMN total_amount TYPE NUMERIC`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("init postgres schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) PutProduct(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO products (`+productColumns+`) VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET name=$2, price=$3, category=$4, description=$5, is_available=$6`,
		p.ID, p.Name, p.Price.String(), p.Category, p.Description, p.IsAvailable)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

func (s *PostgresStore) ResolveProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("resolve product: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, d domain.Draft) (domain.Order, error) {
	lines, total, err := pricing.Snapshot(ctx, s, d)
	if err != nil {
		return domain.Order{}, err
	}
	items, err := encodeItems(lines)
	if err != nil {
		return domain.Order{}, err
	}
	now := s.opts.clock.Now().UnixMilli()
	o := domain.Order{
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
	_, err = s.db.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		o.ID, o.Table, items, o.TotalAmount.String(), string(o.Status), o.Notes, o.CashierID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) List(ctx context.Context, f domain.Filter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Statuses) > 0 {
		args = append(args, pq.Array(statusStrings(f.Statuses)))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if f.Table != "" {
		args = append(args, f.Table)
		where = append(where, fmt.Sprintf("table_name = $%d", len(args)))
	}
	q := `SELECT ` + orderColumns + ` FROM orders`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, seq DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()
	out := []domain.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return domain.Order{}, err
	}
	row := s.db.QueryRowContext(ctx, `UPDATE orders SET status=$1, updated_at=$2 WHERE id=$3 RETURNING `+orderColumns,
		string(status), s.opts.clock.Now().UnixMilli(), id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("update status: %w", err)
	}
	return o, nil
}

func (s *PostgresStore) Record(ctx context.Context, e domain.ActivityEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO activity (`+activityColumns+`) VALUES ($1,$2,$3,$4,$5,$6)`,
		e.ID, e.Timestamp, string(e.Role), string(e.Action), e.Details, e.TargetID)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListActivity(ctx context.Context, n int) ([]domain.ActivityEntry, error) {
	q := `SELECT ` + activityColumns + ` FROM activity ORDER BY seq DESC`
	var args []any
	if n > 0 {
		q += " LIMIT $1"
		args = append(args, n)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	defer rows.Close()
	out := []domain.ActivityEntry{}
	for rows.Next() {
		e, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
