package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)

	r, err := ParseDateRange("2024-03-01", "2024-03-31", wib)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, wib), r.From)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999000000, wib), r.To)

	r, err = ParseDateRange("2024-03-05", "2024-03-05", time.UTC)
	require.NoError(t, err)
	assert.True(t, r.Contains(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2024, 3, 5, 23, 59, 59, 999000000, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 6, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2024, 3, 4, 23, 59, 59, 999999999, time.UTC)))

	for _, tc := range [][2]string{
		{"", "2024-03-05"},
		{"2024-03-05", ""},
		{"05/03/2024", "2024-03-06"},
		{"2024-03-05", "2024-13-01"},
		{"2024-03-06", "2024-03-05"},
	} {
		_, err := ParseDateRange(tc[0], tc[1], time.UTC)
		assert.ErrorIs(t, err, ErrInvalidDateRange, tc)
	}
}

func TestMonth(t *testing.T) {
	r := Month(time.Date(2024, 2, 14, 10, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2024, 2, 29, 23, 59, 59, 999000000, time.UTC), r.To)
}

func TestDayUsesReferenceZone(t *testing.T) {
	wib := time.FixedZone("WIB", 7*3600)
	r := Day(time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC), wib)
	assert.Equal(t, 10, r.From.Day())
}

func TestPatchApply(t *testing.T) {
	o := Order{
		CustomerName: "Siti",
		Category:     Category{Kind: KindByWeight, ByWeight: &ByWeight{ServiceType: ServiceWashIron, WeightKg: 2}},
		Status:       StatusPending,
	}
	w := 3.5
	st := StatusInProgress
	got := Patch{WeightKg: &w, Status: &st}.Apply(o)

	assert.Equal(t, 3.5, got.Category.ByWeight.WeightKg)
	assert.Equal(t, 2.0, o.Category.ByWeight.WeightKg, "original untouched")
	assert.Equal(t, StatusInProgress, got.Status)
	assert.Equal(t, "Siti", got.CustomerName)
}

func TestPatchFlags(t *testing.T) {
	assert.True(t, Patch{}.Empty())
	q := 1.0
	assert.True(t, Patch{Quantity: &q}.TouchesCategory())
	assert.False(t, Patch{Quantity: &q}.Empty())
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, Status("Menunggu").Valid())
	assert.Equal(t, -1, Status("x").Rank())
	assert.Less(t, StatusPending.Rank(), StatusCompleted.Rank())
}

func TestCategoryConsistent(t *testing.T) {
	assert.True(t, Category{Kind: KindByUnit, ByUnit: &ByUnit{}}.Consistent())
	assert.False(t, Category{Kind: KindByUnit, ByWeight: &ByWeight{}}.Consistent())
	assert.False(t, Category{Kind: KindByWeight, ByWeight: &ByWeight{}, ByUnit: &ByUnit{}}.Consistent())
	assert.False(t, Category{}.Consistent())
}
