package report

import (
	"context"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
)

type OrderReader interface {
	ListOrdersByDateRange(ctx context.Context, r order.DateRange) ([]order.Order, error)
	CountOrders(ctx context.Context, f order.Filter) (int64, error)
	SumOrderPrice(ctx context.Context, f order.Filter) (int64, error)
}
