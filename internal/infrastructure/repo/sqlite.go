package repo

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"cafe-orders/internal/domain"
	"cafe-orders/internal/pricing"
)

//go:embed sqlite_schema.sql
var sqliteSchema string

const sqliteSchemaVersion = 1

// SQLiteStore is a durable single-device order store.
type SQLiteStore struct {
	db   *sql.DB
	opts options
}

// OpenSQLite creates or opens the database at path. Use ":memory:" for a
// throwaway store.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}
	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, opts: buildOptions(opts)}, nil
}

func migrateSQLite(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version >= sqliteSchemaVersion {
		return nil
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", sqliteSchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutProduct(ctx context.Context, p domain.Product) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO products (`+productColumns+`) VALUES (?,?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, price=excluded.price, category=excluded.category,
		description=excluded.description, is_available=excluded.is_available`,
		p.ID, p.Name, p.Price.String(), p.Category, p.Description, p.IsAvailable)
	if err != nil {
		return fmt.Errorf("put product: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ResolveProduct(ctx context.Context, id string) (domain.Product, error) {
	p, err := scanProduct(s.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("resolve product: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) ListProducts(ctx context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY rowid`)
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

func (s *SQLiteStore) Create(ctx context.Context, d domain.Draft) (domain.Order, error) {
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
	_, err = s.db.ExecContext(ctx, `INSERT INTO orders (`+orderColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		o.ID, o.Table, items, o.TotalAmount.String(), string(o.Status), o.Notes, o.CashierID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return o, nil
}

func (s *SQLiteStore) List(ctx context.Context, f domain.Filter) ([]domain.Order, error) {
	var (
		where []string
		args  []any
	)
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+strings.TrimSuffix(strings.Repeat("?,", len(f.Statuses)), ",")+")")
		for _, st := range statusStrings(f.Statuses) {
			args = append(args, st)
		}
	}
	if f.Table != "" {
		where = append(where, "table_name = ?")
		args = append(args, f.Table)
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

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Order, error) {
	o, err := scanOrder(s.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (s *SQLiteStore) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	if _, err := domain.ParseStatus(string(status)); err != nil {
		return domain.Order{}, err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), s.opts.clock.Now().UnixMilli(), id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Order{}, fmt.Errorf("update status: %w", err)
	}
	if n == 0 {
		return domain.Order{}, fmt.Errorf("%w: %s", domain.ErrOrderNotFound, id)
	}
	return s.Get(ctx, id)
}

func (s *SQLiteStore) Record(ctx context.Context, e domain.ActivityEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO activity (`+activityColumns+`) VALUES (?,?,?,?,?,?)`,
		e.ID, e.Timestamp, string(e.Role), string(e.Action), e.Details, e.TargetID)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListActivity(ctx context.Context, n int) ([]domain.ActivityEntry, error) {
	q := `SELECT ` + activityColumns + ` FROM activity ORDER BY seq DESC`
	var args []any
	if n > 0 {
		q += " LIMIT ?"
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
