package pricing

import (
	"testing"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func weight(st order.ServiceType, kg float64) order.Category {
	return order.Category{Kind: order.KindByWeight, ByWeight: &order.ByWeight{ServiceType: st, WeightKg: kg}}
}

func unit(kind string, price *int64, qty float64) order.Category {
	return order.Category{Kind: order.KindByUnit, ByUnit: &order.ByUnit{ItemKind: kind, UnitPrice: price, Quantity: qty}}
}

func TestComputeByWeight(t *testing.T) {
	e := NewEngine(DefaultRates())

	tests := []struct {
		name string
		cat  order.Category
		want int64
	}{
		{"wash and iron", weight(order.ServiceWashIron, 2.5), 15000},
		{"iron only", weight(order.ServiceIronOnly, 3), 12000},
		{"rounds half up", weight(order.ServiceIronOnly, 0.000125), 1},
		{"rounds down", weight(order.ServiceWashIron, 1.00001), 6000},
		{"zero weight", weight(order.ServiceWashIron, 0), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Compute(tt.cat)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeByWeightErrors(t *testing.T) {
	e := NewEngine(DefaultRates())

	_, err := e.Compute(weight("DRY_CLEAN", 1))
	assert.ErrorIs(t, err, ErrInvalidServiceType)

	_, err = e.Compute(weight(order.ServiceWashIron, -1))
	assert.ErrorIs(t, err, ErrInvalidWeight)

	_, err = e.Compute(order.Category{})
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestComputeByUnit(t *testing.T) {
	rates := DefaultRates()
	rates.PerUnit["Bed Cover"] = 25000
	e := NewEngine(rates)

	got, err := e.Compute(unit("Bed Cover", nil, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got)

	got, err = e.Compute(unit("Bed Cover", ptr(int64(20000)), 2))
	require.NoError(t, err)
	assert.Equal(t, int64(40000), got, "override wins over the table")

	got, err = e.Compute(unit("Karpet", nil, 3))
	require.NoError(t, err)
	assert.Equal(t, int64(0), got, "unknown kind without override costs nothing")

	_, err = e.Compute(unit("Sprei", ptr(int64(1000)), -1))
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = e.Compute(unit("Sprei", ptr(int64(-5)), 1))
	assert.ErrorIs(t, err, ErrInvalidUnitPrice)
}

func TestResolve(t *testing.T) {
	rates := DefaultRates()
	rates.PerUnit["Selimut"] = 15000
	e := NewEngine(rates)

	in := unit("Selimut", nil, 1)
	out := e.Resolve(in)
	require.NotNil(t, out.ByUnit.UnitPrice)
	assert.Equal(t, int64(15000), *out.ByUnit.UnitPrice)
	assert.Nil(t, in.ByUnit.UnitPrice, "input is not mutated")

	w := weight(order.ServiceWashIron, 1)
	assert.Equal(t, w, e.Resolve(w))
}

func TestParseRates(t *testing.T) {
	got, err := ParseRates("Sprei=10000, Bed Cover = 25000 ,")
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"Sprei": 10000, "Bed Cover": 25000}, got)

	got, err = ParseRates("")
	require.NoError(t, err)
	assert.Empty(t, got)

	for _, bad := range []string{"Sprei", "=10", "Sprei=abc", "Sprei=-1"} {
		_, err := ParseRates(bad)
		assert.Error(t, err, bad)
	}
}

func TestWithOverrides(t *testing.T) {
	rates := DefaultRates().WithOverrides(
		map[string]int64{"IRON_ONLY": 5000, "EXPRESS": 9000},
		map[string]int64{"Gorden": 12000},
	)
	e := NewEngine(rates)

	assert.True(t, e.KnownServiceType("EXPRESS"))
	got, err := e.Compute(weight(order.ServiceIronOnly, 2))
	require.NoError(t, err)
	assert.Equal(t, int64(10000), got)

	assert.Equal(t, int64(4000), DefaultRates().PerKg[order.ServiceIronOnly], "defaults untouched")
}
