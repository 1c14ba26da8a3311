package report

import (
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
)

// Stats is the admin dashboard summary. Revenue counts completed orders only.
type Stats struct {
	OrdersToday        int64 `json:"orders_today"`
	OrdersThisMonth    int64 `json:"orders_this_month"`
	CompletedToday     int64 `json:"completed_today"`
	CompletedThisMonth int64 `json:"completed_this_month"`
	RevenueToday       int64 `json:"revenue_today"`
	RevenueThisMonth   int64 `json:"revenue_this_month"`
}

type Export struct {
	From         time.Time     `json:"from"`
	To           time.Time     `json:"to"`
	Orders       []order.Order `json:"orders"`
	TotalOrders  int64         `json:"total_orders"`
	TotalRevenue int64         `json:"total_revenue"`
}
