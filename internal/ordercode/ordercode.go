package ordercode

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
)

const (
	Prefix     = "ORD"
	dateLayout = "20060102"

	StrategyRandom     = "random"
	StrategySequential = "sequential"
)

type Generator interface {
	Generate(ctx context.Context, now time.Time) (string, error)
}

func Format(now time.Time, loc *time.Location, suffix int) string {
	return fmt.Sprintf("%s-%s-%03d", Prefix, now.In(loc).Format(dateLayout), suffix)
}

// RandomGenerator draws the suffix from 100..999. Uniqueness relies on the store index.
type RandomGenerator struct {
	Loc  *time.Location
	IntN func(n int) int
}

func NewRandomGenerator(loc *time.Location) *RandomGenerator {
	return &RandomGenerator{Loc: loc, IntN: rand.Intn}
}

func (g *RandomGenerator) Generate(_ context.Context, now time.Time) (string, error) {
	return Format(now, g.Loc, 100+g.IntN(900)), nil
}

// DailyCounter yields the next 1-based sequence number for the calendar day of now.
type DailyCounter interface {
	Next(ctx context.Context, now time.Time) (int64, error)
}

type SequentialGenerator struct {
	Loc     *time.Location
	Counter DailyCounter
}

func NewSequentialGenerator(loc *time.Location, c DailyCounter) *SequentialGenerator {
	return &SequentialGenerator{Loc: loc, Counter: c}
}

func (g *SequentialGenerator) Generate(ctx context.Context, now time.Time) (string, error) {
	n, err := g.Counter.Next(ctx, now)
	if err != nil {
		return "", fmt.Errorf("next sequence: %w", err)
	}
	return Format(now, g.Loc, int(n)), nil
}

type OrderCounter interface {
	CountOrders(ctx context.Context, f order.Filter) (int64, error)
}

// StoreCounter counts today's orders and adds one. Two concurrent callers can read
// the same count; the caller must retry on order.ErrDuplicateCode.
type StoreCounter struct {
	Loc   *time.Location
	Store OrderCounter
}

func (c *StoreCounter) Next(ctx context.Context, now time.Time) (int64, error) {
	n, err := c.Store.CountOrders(ctx, order.Filter{Range: order.Day(now, c.Loc)})
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}
