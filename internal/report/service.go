package report

import (
	"context"
	"fmt"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/types/report"
	"golang.org/x/sync/errgroup"
)

type Service struct {
	repo OrderReader
	loc  *time.Location
	now  func() time.Time
}

func NewService(repo OrderReader, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, loc: loc, now: time.Now}
}

func (s *Service) Location() *time.Location { return s.loc }

// Stats runs the six dashboard queries concurrently. The first failure cancels the rest.
func (s *Service) Stats(ctx context.Context) (report.Stats, error) {
	now := s.now()
	today := order.Day(now, s.loc)
	month := order.Month(now, s.loc)
	completed := order.StatusCompleted

	var st report.Stats
	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int64, f order.Filter) {
		g.Go(func() error {
			n, err := s.repo.CountOrders(gctx, f)
			if err != nil {
				return fmt.Errorf("count orders: %w", err)
			}
			*dst = n
			return nil
		})
	}
	sum := func(dst *int64, f order.Filter) {
		g.Go(func() error {
			n, err := s.repo.SumOrderPrice(gctx, f)
			if err != nil {
				return fmt.Errorf("sum revenue: %w", err)
			}
			*dst = n
			return nil
		})
	}

	count(&st.OrdersToday, order.Filter{Range: today})
	count(&st.OrdersThisMonth, order.Filter{Range: month})
	count(&st.CompletedToday, order.Filter{Range: today, Status: &completed})
	count(&st.CompletedThisMonth, order.Filter{Range: month, Status: &completed})
	sum(&st.RevenueToday, order.Filter{Range: today, Status: &completed})
	sum(&st.RevenueThisMonth, order.Filter{Range: month, Status: &completed})

	if err := g.Wait(); err != nil {
		return report.Stats{}, err
	}
	return st, nil
}

// Export lists every order in r. Revenue is summed from the listed completed orders.
func (s *Service) Export(ctx context.Context, r order.DateRange) (report.Export, error) {
	orders, err := s.repo.ListOrdersByDateRange(ctx, r)
	if err != nil {
		return report.Export{}, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []order.Order{}
	}
	exp := report.Export{
		From:        r.From,
		To:          r.To,
		Orders:      orders,
		TotalOrders: int64(len(orders)),
	}
	for _, o := range orders {
		if o.Status == order.StatusCompleted {
			exp.TotalRevenue += o.Price
		}
	}
	return exp, nil
}
