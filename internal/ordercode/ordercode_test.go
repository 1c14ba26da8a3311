package ordercode

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var codePattern = regexp.MustCompile(`^ORD-\d{8}-\d{3}$`)

func TestRandomGenerator(t *testing.T) {
	now := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

	g := NewRandomGenerator(time.UTC)
	for i := 0; i < 200; i++ {
		code, err := g.Generate(context.Background(), now)
		require.NoError(t, err)
		assert.Regexp(t, codePattern, code)
		assert.Contains(t, code, "-20240309-")
	}

	g.IntN = func(n int) int { return 0 }
	code, _ := g.Generate(context.Background(), now)
	assert.Equal(t, "ORD-20240309-100", code)

	g.IntN = func(n int) int { return n - 1 }
	code, _ = g.Generate(context.Background(), now)
	assert.Equal(t, "ORD-20240309-999", code)
}

func TestGeneratorUsesReferenceZone(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	now := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)

	g := &RandomGenerator{Loc: jakarta, IntN: func(int) int { return 23 }}
	code, err := g.Generate(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240310-123", code)
}

type stubCounter struct {
	count  int64
	err    error
	filter order.Filter
}

func (s *stubCounter) CountOrders(ctx context.Context, f order.Filter) (int64, error) {
	s.filter = f
	return s.count, s.err
}

func TestSequentialGeneratorStoreCounter(t *testing.T) {
	now := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	store := &stubCounter{count: 6}
	g := NewSequentialGenerator(time.UTC, &StoreCounter{Loc: time.UTC, Store: store})

	code, err := g.Generate(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, "ORD-20240309-007", code)
	assert.Equal(t, time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC), store.filter.Range.From)
	assert.Equal(t, time.Date(2024, 3, 9, 23, 59, 59, 999000000, time.UTC), store.filter.Range.To)

	store.err = errors.New("db down")
	_, err = g.Generate(context.Background(), now)
	assert.Error(t, err)
}

type fakeRedis struct {
	counts  map[string]int64
	expired map[string]time.Duration
	err     error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, expired: map[string]time.Duration{}}
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	f.counts[key]++
	return redis.NewIntResult(f.counts[key], nil)
}

func (f *fakeRedis) Expire(ctx context.Context, key string, d time.Duration) *redis.BoolCmd {
	f.expired[key] = d
	return redis.NewBoolResult(true, nil)
}

func TestRedisCounter(t *testing.T) {
	fr := newFakeRedis()
	c := NewRedisCounterWith(fr, "laundry", time.UTC)
	g := NewSequentialGenerator(time.UTC, c)

	day1 := time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)

	first, err := g.Generate(context.Background(), day1)
	require.NoError(t, err)
	second, err := g.Generate(context.Background(), day1)
	require.NoError(t, err)
	other, err := g.Generate(context.Background(), day2)
	require.NoError(t, err)

	assert.Equal(t, "ORD-20240309-001", first)
	assert.Equal(t, "ORD-20240309-002", second)
	assert.Equal(t, "ORD-20240310-001", other)
	assert.Equal(t, counterTTL, fr.expired["laundry:order-seq:20240309"])
	assert.Len(t, fr.expired, 2)

	fr.err = errors.New("connection refused")
	_, err = g.Generate(context.Background(), day1)
	assert.Error(t, err)
}
