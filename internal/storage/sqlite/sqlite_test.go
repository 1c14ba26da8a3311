package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/types/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "laundry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func weightOrder(code string, price int64, status order.Status, created time.Time) *order.Order {
	return &order.Order{
		Code:         code,
		CustomerName: "Siti",
		Phone:        "6281234567890",
		Category: order.Category{
			Kind:     order.KindByWeight,
			ByWeight: &order.ByWeight{ServiceType: order.ServiceWashIron, WeightKg: 2.5},
		},
		Price:     price,
		Status:    status,
		CreatedAt: created,
	}
}

func TestInsertAndFind(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()

	o := weightOrder("ORD-20240301-101", 15000, order.StatusPending, time.Time{})
	require.NoError(t, repo.InsertOrder(ctx, o))
	assert.NotZero(t, o.ID)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)

	got, err := repo.FindOrderByCode(ctx, o.Code)
	require.NoError(t, err)
	assert.Equal(t, "Siti", got.CustomerName)
	assert.Equal(t, int64(15000), got.Price)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, got.Category.Consistent())
	assert.True(t, o.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.FindOrderByCode(ctx, "ORD-00000000-000")
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestInsertDuplicateCode(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()

	require.NoError(t, repo.InsertOrder(ctx, weightOrder("ORD-20240301-555", 1, order.StatusPending, time.Time{})))
	err := repo.InsertOrder(ctx, weightOrder("ORD-20240301-555", 2, order.StatusPending, time.Time{}))
	assert.ErrorIs(t, err, order.ErrDuplicateCode)
}

func TestUnitOrderRoundTrip(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()

	up := int64(25000)
	o := &order.Order{
		Code:         "ORD-20240301-200",
		CustomerName: "Budi",
		Category: order.Category{
			Kind:   order.KindByUnit,
			ByUnit: &order.ByUnit{ItemKind: "Bed Cover", UnitPrice: &up, Quantity: 2},
		},
		Price:  50000,
		Status: order.StatusPending,
	}
	require.NoError(t, repo.InsertOrder(ctx, o))

	got, err := repo.FindOrderByCode(ctx, o.Code)
	require.NoError(t, err)
	require.NotNil(t, got.Category.ByUnit)
	assert.Nil(t, got.Category.ByWeight)
	assert.Equal(t, "Bed Cover", got.Category.ByUnit.ItemKind)
	require.NotNil(t, got.Category.ByUnit.UnitPrice)
	assert.Equal(t, int64(25000), *got.Category.ByUnit.UnitPrice)
}

func TestListByDateRangeBoundaries(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	fixtures := []struct {
		code string
		at   time.Time
	}{
		{"ORD-20240309-999", day.Add(-time.Millisecond)},
		{"ORD-20240310-300", day.Add(12 * time.Hour)},
		{"ORD-20240310-100", day},
		{"ORD-20240310-200", day.Add(24*time.Hour - time.Millisecond)},
		{"ORD-20240311-100", day.Add(24 * time.Hour)},
	}
	for _, f := range fixtures {
		require.NoError(t, repo.InsertOrder(ctx, weightOrder(f.code, 1000, order.StatusPending, f.at)))
	}

	got, err := repo.ListOrdersByDateRange(ctx, order.Day(day, time.UTC))
	require.NoError(t, err)
	codes := make([]string, 0, len(got))
	for _, o := range got {
		codes = append(codes, o.Code)
	}
	assert.Equal(t, []string{"ORD-20240310-100", "ORD-20240310-300", "ORD-20240310-200"}, codes)

	recent, err := repo.ListRecentOrders(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "ORD-20240311-100", recent[0].Code)
	assert.Equal(t, "ORD-20240310-200", recent[1].Code)
}

func TestSubMillisecondCreatedAtStaysInItsDay(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()

	day := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	late := day.Add(24*time.Hour - 500*time.Microsecond)
	o := weightOrder("ORD-20240310-101", 12000, order.StatusCompleted, late)
	require.NoError(t, repo.InsertOrder(ctx, o))
	assert.True(t, o.CreatedAt.Equal(day.Add(24*time.Hour-time.Millisecond)))

	n, err := repo.CountOrders(ctx, order.Filter{Range: order.Day(day, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.CountOrders(ctx, order.Filter{Range: order.Day(day.AddDate(0, 0, 1), time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.CountOrders(ctx, order.Filter{Range: order.Month(day, time.UTC)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.ListOrdersByDateRange(ctx, order.Day(day, time.UTC))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "ORD-20240310-101", got[0].Code)
}

func TestUpdateOrderFields(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	require.NoError(t, repo.InsertOrder(ctx, weightOrder("ORD-20240310-123", 15000, order.StatusPending, created)))

	later := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return later }

	status := order.StatusCompleted
	note := "diambil"
	got, err := repo.UpdateOrderFields(ctx, "ORD-20240310-123", order.Patch{Status: &status, Note: &note})
	require.NoError(t, err)
	assert.Equal(t, order.StatusCompleted, got.Status)
	assert.Equal(t, "diambil", got.Note)
	assert.Equal(t, "Siti", got.CustomerName)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.True(t, got.UpdatedAt.Equal(later))

	repo.now = func() time.Time { return later.Add(time.Hour) }
	got, err = repo.UpdateOrderFields(ctx, "ORD-20240310-123", order.Patch{})
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.Equal(later.Add(time.Hour)), "empty patch still refreshes updated_at")

	_, err = repo.UpdateOrderFields(ctx, "ORD-missing", order.Patch{Status: &status})
	assert.ErrorIs(t, err, order.ErrNotFound)
}

func TestCountAndSum(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()
	day := time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC)

	require.NoError(t, repo.InsertOrder(ctx, weightOrder("ORD-20240310-101", 10000, order.StatusCompleted, day)))
	require.NoError(t, repo.InsertOrder(ctx, weightOrder("ORD-20240310-102", 5000, order.StatusCompleted, day.Add(time.Hour))))
	require.NoError(t, repo.InsertOrder(ctx, weightOrder("ORD-20240310-103", 7000, order.StatusPending, day.Add(2*time.Hour))))
	require.NoError(t, repo.InsertOrder(ctx, weightOrder("ORD-20240311-101", 9000, order.StatusCompleted, day.Add(24*time.Hour))))

	completed := order.StatusCompleted
	today := order.Day(day, time.UTC)

	n, err := repo.CountOrders(ctx, order.Filter{Range: today})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	sum, err := repo.SumOrderPrice(ctx, order.Filter{Range: today, Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, int64(15000), sum)

	empty := order.Day(day.AddDate(0, 1, 0), time.UTC)
	sum, err = repo.SumOrderPrice(ctx, order.Filter{Range: empty, Status: &completed})
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
}

func TestUsers(t *testing.T) {
	repo := openTest(t)
	ctx := context.Background()

	u := &user.User{Login: "admin", PasswordHash: "hash", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, u))
	assert.NotZero(t, u.ID)

	err := repo.Create(ctx, &user.User{Login: "admin", PasswordHash: "x"})
	assert.ErrorIs(t, err, user.ErrExists)

	got, err := repo.FindByLogin(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = repo.FindByLogin(ctx, "nobody")
	assert.ErrorIs(t, err, user.ErrNotFound)
}
