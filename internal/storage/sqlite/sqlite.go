// Package sqlite stores orders in a single SQLite file. Timestamps are fixed-width
// UTC TEXT so lexical comparison matches time order.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/storage"
	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/types/user"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    login         TEXT    NOT NULL UNIQUE,
    password_hash TEXT    NOT NULL,
    created_at    TEXT    NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    code          TEXT    NOT NULL UNIQUE,
    customer_name TEXT    NOT NULL,
    phone         TEXT    NOT NULL DEFAULT '',
    kind          TEXT    NOT NULL DEFAULT '',
    service_type  TEXT,
    weight_kg     REAL,
    item_kind     TEXT,
    unit_price    INTEGER,
    quantity      REAL,
    price         INTEGER NOT NULL DEFAULT 0,
    note          TEXT    NOT NULL DEFAULT '',
    status        TEXT    NOT NULL,
    created_at    TEXT    NOT NULL,
    updated_at    TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at);
`

var _ storage.Storage = (*Repository)(nil)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
func Open(path string) (*Repository, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return &Repository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func timeArg(t time.Time) any { return formatTime(t) }

func placeholder(int) string { return "?" }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse time %q: %w", s, err)
	}
	return t, nil
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	return errors.As(err, &se) && se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func (r *Repository) Create(ctx context.Context, u *user.User) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (login, password_hash, created_at) VALUES (?, ?, ?)`,
		u.Login, u.PasswordHash, formatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return user.ErrExists
	}
	if err != nil {
		return fmt.Errorf("sqlite: insert user: %w", err)
	}
	u.ID, err = res.LastInsertId()
	return err
}

func (r *Repository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	var (
		u       user.User
		created string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, login, password_hash, created_at FROM users WHERE login = ?`, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if u.CreatedAt, err = parseTime(created); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) InsertOrder(ctx context.Context, o *order.Order) error {
	storage.StampTimestamps(o, r.now())
	args := append(storage.InsertValues(o), formatTime(o.CreatedAt), formatTime(o.UpdatedAt))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO orders (`+storage.InsertColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...)
	if isUniqueViolation(err) {
		return order.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("sqlite: insert order: %w", err)
	}
	o.ID, err = res.LastInsertId()
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(sc scanner) (order.Order, error) {
	var (
		row                  storage.OrderRow
		createdAt, updatedAt string
	)
	if err := sc.Scan(row.Dest(&createdAt, &updatedAt)...); err != nil {
		return order.Order{}, err
	}
	c, err := parseTime(createdAt)
	if err != nil {
		return order.Order{}, err
	}
	u, err := parseTime(updatedAt)
	if err != nil {
		return order.Order{}, err
	}
	return row.Order(c, u), nil
}

func (r *Repository) FindOrderByCode(ctx context.Context, code string) (*order.Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+storage.OrderColumns+` FROM orders WHERE code = ?`, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *Repository) queryOrders(ctx context.Context, q string, args ...any) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *Repository) ListRecentOrders(ctx context.Context, limit int) ([]order.Order, error) {
	return r.queryOrders(ctx,
		`SELECT `+storage.OrderColumns+` FROM orders ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
}

func (r *Repository) ListOrdersByDateRange(ctx context.Context, dr order.DateRange) ([]order.Order, error) {
	where, args := storage.Where(order.Filter{Range: dr}, placeholder, timeArg)
	return r.queryOrders(ctx,
		`SELECT `+storage.OrderColumns+` FROM orders`+where+` ORDER BY created_at ASC, id ASC`, args...)
}

func (r *Repository) UpdateOrderFields(ctx context.Context, code string, p order.Patch) (*order.Order, error) {
	cols := storage.PatchColumns(p)
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		sets = append(sets, c.Name+" = ?")
		args = append(args, c.Value)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, formatTime(r.now().Truncate(time.Millisecond)), code)

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET `+strings.Join(sets, ", ")+` WHERE code = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, order.ErrNotFound
	}
	return r.FindOrderByCode(ctx, code)
}

func (r *Repository) CountOrders(ctx context.Context, f order.Filter) (int64, error) {
	where, args := storage.Where(f, placeholder, timeArg)
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&n)
	return n, err
}

func (r *Repository) SumOrderPrice(ctx context.Context, f order.Filter) (int64, error) {
	where, args := storage.Where(f, placeholder, timeArg)
	var sum int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(price), 0) FROM orders`+where, args...).Scan(&sum)
	return sum, err
}
