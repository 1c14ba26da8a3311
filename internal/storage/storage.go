package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/types/user"
)

// UserRepository handles admin accounts.
type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	FindByLogin(ctx context.Context, login string) (*user.User, error)
}

// OrderRepository is the single collection of laundry orders.
type OrderRepository interface {
	InsertOrder(ctx context.Context, o *order.Order) error
	FindOrderByCode(ctx context.Context, code string) (*order.Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]order.Order, error)
	ListOrdersByDateRange(ctx context.Context, r order.DateRange) ([]order.Order, error)
	UpdateOrderFields(ctx context.Context, code string, p order.Patch) (*order.Order, error)
	CountOrders(ctx context.Context, f order.Filter) (int64, error)
	SumOrderPrice(ctx context.Context, f order.Filter) (int64, error)
}

// Storage bundles every repository with connection management.
type Storage interface {
	UserRepository
	OrderRepository

	Ping(ctx context.Context) error
	Close() error
}

// OrderColumns lists the orders table columns in scan order.
const OrderColumns = "id, code, customer_name, phone, kind, service_type, weight_kg, item_kind, unit_price, quantity, price, note, status, created_at, updated_at"

// InsertColumns is OrderColumns without the generated id.
const InsertColumns = "code, customer_name, phone, kind, service_type, weight_kg, item_kind, unit_price, quantity, price, note, status, created_at, updated_at"

// InsertValues returns the values for InsertColumns up to, but excluding, the timestamps.
func InsertValues(o *order.Order) []any {
	var (
		serviceType, itemKind sql.NullString
		weight, quantity      sql.NullFloat64
		unitPrice             sql.NullInt64
	)
	if bw := o.Category.ByWeight; bw != nil {
		serviceType = sql.NullString{String: string(bw.ServiceType), Valid: true}
		weight = sql.NullFloat64{Float64: bw.WeightKg, Valid: true}
	}
	if bu := o.Category.ByUnit; bu != nil {
		itemKind = sql.NullString{String: bu.ItemKind, Valid: true}
		quantity = sql.NullFloat64{Float64: bu.Quantity, Valid: true}
		if bu.UnitPrice != nil {
			unitPrice = sql.NullInt64{Int64: *bu.UnitPrice, Valid: true}
		}
	}
	return []any{
		o.Code, o.CustomerName, o.Phone, string(o.Category.Kind),
		serviceType, weight, itemKind, unitPrice, quantity,
		o.Price, o.Note, string(o.Status),
	}
}

// OrderRow is the nullable shape of an orders row.
type OrderRow struct {
	ID           int64
	Code         string
	CustomerName string
	Phone        sql.NullString
	Kind         sql.NullString
	ServiceType  sql.NullString
	WeightKg     sql.NullFloat64
	ItemKind     sql.NullString
	UnitPrice    sql.NullInt64
	Quantity     sql.NullFloat64
	Price        int64
	Note         sql.NullString
	Status       string
}

// Dest returns scan destinations matching OrderColumns. Timestamps are backend specific.
func (r *OrderRow) Dest(createdAt, updatedAt any) []any {
	return []any{
		&r.ID, &r.Code, &r.CustomerName, &r.Phone, &r.Kind,
		&r.ServiceType, &r.WeightKg, &r.ItemKind, &r.UnitPrice, &r.Quantity,
		&r.Price, &r.Note, &r.Status, createdAt, updatedAt,
	}
}

// Order converts the row. Rows written before unit orders existed have no kind and
// are read as weight orders.
func (r *OrderRow) Order(createdAt, updatedAt time.Time) order.Order {
	o := order.Order{
		ID:           r.ID,
		Code:         r.Code,
		CustomerName: r.CustomerName,
		Phone:        r.Phone.String,
		Price:        r.Price,
		Note:         r.Note.String,
		Status:       order.Status(r.Status),
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}
	kind := order.Kind(r.Kind.String)
	if kind == "" {
		kind = order.KindByWeight
	}
	o.Category.Kind = kind
	switch kind {
	case order.KindByUnit:
		bu := &order.ByUnit{ItemKind: r.ItemKind.String, Quantity: r.Quantity.Float64}
		if r.UnitPrice.Valid {
			v := r.UnitPrice.Int64
			bu.UnitPrice = &v
		}
		o.Category.ByUnit = bu
	default:
		o.Category.ByWeight = &order.ByWeight{
			ServiceType: order.ServiceType(r.ServiceType.String),
			WeightKg:    r.WeightKg.Float64,
		}
	}
	return o
}

type Column struct {
	Name  string
	Value any
}

// PatchColumns maps the present fields of p to column assignments.
func PatchColumns(p order.Patch) []Column {
	var cols []Column
	if p.Status != nil {
		cols = append(cols, Column{"status", string(*p.Status)})
	}
	if p.CustomerName != nil {
		cols = append(cols, Column{"customer_name", *p.CustomerName})
	}
	if p.Phone != nil {
		cols = append(cols, Column{"phone", *p.Phone})
	}
	if p.Note != nil {
		cols = append(cols, Column{"note", *p.Note})
	}
	if p.Price != nil {
		cols = append(cols, Column{"price", *p.Price})
	}
	if p.ServiceType != nil {
		cols = append(cols, Column{"service_type", string(*p.ServiceType)})
	}
	if p.WeightKg != nil {
		cols = append(cols, Column{"weight_kg", *p.WeightKg})
	}
	if p.ItemKind != nil {
		cols = append(cols, Column{"item_kind", *p.ItemKind})
	}
	if p.UnitPrice != nil {
		cols = append(cols, Column{"unit_price", *p.UnitPrice})
	}
	if p.Quantity != nil {
		cols = append(cols, Column{"quantity", *p.Quantity})
	}
	return cols
}

// Where builds the WHERE clause for f. placeholder renders the n-th (1-based) bind
// parameter and ts converts a bound timestamp.
func Where(f order.Filter, placeholder func(n int) string, ts func(time.Time) any) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !f.Range.From.IsZero() {
		args = append(args, ts(f.Range.From))
		conds = append(conds, "created_at >= "+placeholder(len(args)))
	}
	if !f.Range.To.IsZero() {
		args = append(args, ts(f.Range.To))
		conds = append(conds, "created_at <= "+placeholder(len(args)))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		conds = append(conds, "status = "+placeholder(len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// StampTimestamps fills zero CreatedAt and UpdatedAt with now. Both are
// truncated to milliseconds so they never fall past a day window's end.
func StampTimestamps(o *order.Order, now time.Time) {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = now
	}
	o.CreatedAt = o.CreatedAt.Truncate(time.Millisecond)
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}
	o.UpdatedAt = o.UpdatedAt.Truncate(time.Millisecond)
}
