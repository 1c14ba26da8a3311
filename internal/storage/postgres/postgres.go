package postgres

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

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

var _ storage.Storage = (*PostgresStorage)(nil)

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	s := &PostgresStorage{db: db}

	if err := s.db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStorage) initSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            password_hash TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            customer_name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            kind TEXT NOT NULL DEFAULT '',
            service_type TEXT,
            weight_kg DOUBLE PRECISION,
            item_kind TEXT,
            unit_price BIGINT,
            quantity DOUBLE PRECISION,
            price BIGINT NOT NULL DEFAULT 0,
            note TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at)`,
	}
	for _, q := range stmts {
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func timeArg(t time.Time) any { return t }

func (s *PostgresStorage) Create(ctx context.Context, u *user.User) error {
	q := `INSERT INTO users (login,password_hash,created_at) VALUES($1,$2,$3) RETURNING id`
	err := s.db.QueryRowContext(ctx, q, u.Login, u.PasswordHash, u.CreatedAt).Scan(&u.ID)
	if isUniqueViolation(err) {
		return user.ErrExists
	}
	return err
}

func (s *PostgresStorage) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	u := &user.User{}
	q := `SELECT id,login,password_hash,created_at FROM users WHERE login=$1`
	if err := s.db.QueryRowContext(ctx, q, login).
		Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *PostgresStorage) InsertOrder(ctx context.Context, o *order.Order) error {
	storage.StampTimestamps(o, time.Now().UTC())
	args := append(storage.InsertValues(o), o.CreatedAt, o.UpdatedAt)
	q := `INSERT INTO orders (` + storage.InsertColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14) RETURNING id`
	err := s.db.QueryRowContext(ctx, q, args...).Scan(&o.ID)
	if isUniqueViolation(err) {
		return order.ErrDuplicateCode
	}
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(sc scanner) (order.Order, error) {
	var (
		row                  storage.OrderRow
		createdAt, updatedAt time.Time
	)
	if err := sc.Scan(row.Dest(&createdAt, &updatedAt)...); err != nil {
		return order.Order{}, err
	}
	return row.Order(createdAt.UTC(), updatedAt.UTC()), nil
}

func (s *PostgresStorage) FindOrderByCode(ctx context.Context, code string) (*order.Order, error) {
	q := `SELECT ` + storage.OrderColumns + ` FROM orders WHERE code = $1`
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStorage) queryOrders(ctx context.Context, q string, args ...any) ([]order.Order, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []order.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *PostgresStorage) ListRecentOrders(ctx context.Context, limit int) ([]order.Order, error) {
	q := `SELECT ` + storage.OrderColumns + ` FROM orders ORDER BY created_at DESC, id DESC LIMIT $1`
	return s.queryOrders(ctx, q, limit)
}

func (s *PostgresStorage) ListOrdersByDateRange(ctx context.Context, r order.DateRange) ([]order.Order, error) {
	where, args := storage.Where(order.Filter{Range: r}, placeholder, timeArg)
	q := `SELECT ` + storage.OrderColumns + ` FROM orders` + where + ` ORDER BY created_at ASC, id ASC`
	return s.queryOrders(ctx, q, args...)
}

func (s *PostgresStorage) UpdateOrderFields(ctx context.Context, code string, p order.Patch) (*order.Order, error) {
	cols := storage.PatchColumns(p)
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		args = append(args, c.Value)
		sets = append(sets, c.Name+" = "+placeholder(len(args)))
	}
	args = append(args, time.Now().UTC().Truncate(time.Millisecond))
	sets = append(sets, "updated_at = "+placeholder(len(args)))
	args = append(args, code)

	q := `UPDATE orders SET ` + strings.Join(sets, ", ") +
		` WHERE code = ` + placeholder(len(args)) + ` RETURNING ` + storage.OrderColumns
	o, err := scanOrder(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, order.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update order: %w", err)
	}
	return &o, nil
}

func (s *PostgresStorage) CountOrders(ctx context.Context, f order.Filter) (int64, error) {
	where, args := storage.Where(f, placeholder, timeArg)
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&n)
	return n, err
}

func (s *PostgresStorage) SumOrderPrice(ctx context.Context, f order.Filter) (int64, error) {
	where, args := storage.Where(f, placeholder, timeArg)
	var sum int64
	err := s.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(price), 0)::BIGINT FROM orders`+where, args...).Scan(&sum)
	return sum, err
}
