package pricing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidServiceType = errors.New("invalid service type")
	ErrInvalidWeight      = errors.New("invalid weight")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidUnitPrice   = errors.New("invalid unit price")
	ErrInvalidCategory    = errors.New("invalid category")
)

// RateTable holds currency units per kg for weight orders and per item for unit orders.
type RateTable struct {
	PerKg   map[order.ServiceType]int64
	PerUnit map[string]int64
}

func DefaultRates() RateTable {
	return RateTable{
		PerKg: map[order.ServiceType]int64{
			order.ServiceWashIron: 6000,
			order.ServiceIronOnly: 4000,
		},
		PerUnit: map[string]int64{},
	}
}

// ParseRates reads "KEY=VALUE,KEY=VALUE". Blank input yields an empty map.
func ParseRates(s string) (map[string]int64, error) {
	out := make(map[string]int64)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("rate %q: expected KEY=VALUE", pair)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("rate %q: %w", pair, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("rate %q: negative", pair)
		}
		out[k] = n
	}
	return out, nil
}

// WithOverrides returns a copy of r with perKg and perUnit entries replacing the defaults.
func (r RateTable) WithOverrides(perKg, perUnit map[string]int64) RateTable {
	out := RateTable{
		PerKg:   make(map[order.ServiceType]int64, len(r.PerKg)+len(perKg)),
		PerUnit: make(map[string]int64, len(r.PerUnit)+len(perUnit)),
	}
	for k, v := range r.PerKg {
		out.PerKg[k] = v
	}
	for k, v := range perKg {
		out.PerKg[order.ServiceType(k)] = v
	}
	for k, v := range r.PerUnit {
		out.PerUnit[k] = v
	}
	for k, v := range perUnit {
		out.PerUnit[k] = v
	}
	return out
}

type Engine struct {
	rates RateTable
}

func NewEngine(rates RateTable) *Engine {
	if rates.PerKg == nil {
		rates.PerKg = map[order.ServiceType]int64{}
	}
	if rates.PerUnit == nil {
		rates.PerUnit = map[string]int64{}
	}
	return &Engine{rates: rates}
}

func (e *Engine) KnownServiceType(st order.ServiceType) bool {
	_, ok := e.rates.PerKg[st]
	return ok
}

// Resolve fills a missing unit price from the per-unit table. Unknown kinds cost 0.
func (e *Engine) Resolve(c order.Category) order.Category {
	if c.ByUnit == nil || c.ByUnit.UnitPrice != nil {
		return c
	}
	bu := *c.ByUnit
	price := e.rates.PerUnit[bu.ItemKind]
	bu.UnitPrice = &price
	c.ByUnit = &bu
	return c
}

// Compute returns round(amount × rate), rounding half away from zero.
func (e *Engine) Compute(c order.Category) (int64, error) {
	switch {
	case c.ByWeight != nil:
		rate, ok := e.rates.PerKg[c.ByWeight.ServiceType]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrInvalidServiceType, c.ByWeight.ServiceType)
		}
		if c.ByWeight.WeightKg < 0 {
			return 0, ErrInvalidWeight
		}
		return multiply(c.ByWeight.WeightKg, rate), nil
	case c.ByUnit != nil:
		c = e.Resolve(c)
		if c.ByUnit.Quantity < 0 {
			return 0, ErrInvalidQuantity
		}
		if *c.ByUnit.UnitPrice < 0 {
			return 0, ErrInvalidUnitPrice
		}
		return multiply(c.ByUnit.Quantity, *c.ByUnit.UnitPrice), nil
	}
	return 0, ErrInvalidCategory
}

func multiply(amount float64, rate int64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(rate)).Round(0).IntPart()
}
