package order

import (
	"context"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
)

type OrderRepository interface {
	InsertOrder(ctx context.Context, o *order.Order) error
	FindOrderByCode(ctx context.Context, code string) (*order.Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]order.Order, error)
	ListOrdersByDateRange(ctx context.Context, r order.DateRange) ([]order.Order, error)
	UpdateOrderFields(ctx context.Context, code string, p order.Patch) (*order.Order, error)
	CountOrders(ctx context.Context, f order.Filter) (int64, error)
	SumOrderPrice(ctx context.Context, f order.Filter) (int64, error)
}

type Notifier interface {
	NotifyCreated(ctx context.Context, o order.Order)
	NotifyStatusChanged(ctx context.Context, o order.Order, s order.Status)
}
