package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("order not found")
	ErrDuplicateCode     = errors.New("order code already exists")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

type Status string

const (
	StatusPending        Status = "PENDING"
	StatusInProgress     Status = "IN_PROGRESS"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusCompleted      Status = "COMPLETED"
)

var statusRank = map[Status]int{
	StatusPending:        0,
	StatusInProgress:     1,
	StatusReadyForPickup: 2,
	StatusCompleted:      3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// Rank is the position of s in the forward lifecycle, or -1 for unknown values.
func (s Status) Rank() int {
	if r, ok := statusRank[s]; ok {
		return r
	}
	return -1
}

type Kind string

const (
	KindByWeight Kind = "BY_WEIGHT"
	KindByUnit   Kind = "BY_UNIT"
)

type ServiceType string

const (
	ServiceWashIron ServiceType = "WASH_IRON"
	ServiceIronOnly ServiceType = "IRON_ONLY"
)

type ByWeight struct {
	ServiceType ServiceType `json:"service_type" bson:"serviceType"`
	WeightKg    float64     `json:"weight_kg" bson:"weightKg"`
}

// ByUnit is per-item laundering. A nil UnitPrice means the rate table default applies;
// persisted orders always carry the effective price.
type ByUnit struct {
	ItemKind  string  `json:"item_kind" bson:"itemKind"`
	UnitPrice *int64  `json:"unit_price,omitempty" bson:"unitPrice,omitempty"`
	Quantity  float64 `json:"quantity" bson:"quantity"`
}

type Category struct {
	Kind     Kind      `json:"kind" bson:"kind"`
	ByWeight *ByWeight `json:"by_weight,omitempty" bson:"byWeight,omitempty"`
	ByUnit   *ByUnit   `json:"by_unit,omitempty" bson:"byUnit,omitempty"`
}

// Consistent reports whether exactly one variant is populated and it matches Kind.
func (c Category) Consistent() bool {
	switch c.Kind {
	case KindByWeight:
		return c.ByWeight != nil && c.ByUnit == nil
	case KindByUnit:
		return c.ByUnit != nil && c.ByWeight == nil
	default:
		return false
	}
}

// Amount is the weight or quantity the price is multiplied from.
func (c Category) Amount() float64 {
	switch {
	case c.ByWeight != nil:
		return c.ByWeight.WeightKg
	case c.ByUnit != nil:
		return c.ByUnit.Quantity
	}
	return 0
}

type Order struct {
	ID           int64     `json:"-" bson:"-"`
	Code         string    `json:"code" bson:"code"`
	CustomerName string    `json:"customer_name" bson:"customerName"`
	Phone        string    `json:"phone,omitempty" bson:"phone"`
	Category     Category  `json:"category" bson:"category"`
	Price        int64     `json:"price" bson:"price"`
	Note         string    `json:"note,omitempty" bson:"note"`
	Status       Status    `json:"status" bson:"status"`
	CreatedAt    time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updatedAt"`
}

// Patch lists the fields a staff correction may touch. Nil means unchanged.
type Patch struct {
	Status       *Status      `json:"status,omitempty"`
	CustomerName *string      `json:"customer_name,omitempty"`
	Phone        *string      `json:"phone,omitempty"`
	Note         *string      `json:"note,omitempty"`
	Price        *int64       `json:"price,omitempty"`
	ServiceType  *ServiceType `json:"service_type,omitempty"`
	WeightKg     *float64     `json:"weight_kg,omitempty"`
	ItemKind     *string      `json:"item_kind,omitempty"`
	UnitPrice    *int64       `json:"unit_price,omitempty"`
	Quantity     *float64     `json:"quantity,omitempty"`
}

func (p Patch) Empty() bool {
	return p.Status == nil && p.CustomerName == nil && p.Phone == nil && p.Note == nil &&
		p.Price == nil && !p.TouchesCategory()
}

func (p Patch) TouchesCategory() bool {
	return p.ServiceType != nil || p.WeightKg != nil || p.ItemKind != nil ||
		p.UnitPrice != nil || p.Quantity != nil
}

// Apply returns a copy of o with the patch merged in. Timestamps are left alone.
func (p Patch) Apply(o Order) Order {
	if p.Status != nil {
		o.Status = *p.Status
	}
	if p.CustomerName != nil {
		o.CustomerName = *p.CustomerName
	}
	if p.Phone != nil {
		o.Phone = *p.Phone
	}
	if p.Note != nil {
		o.Note = *p.Note
	}
	if p.Price != nil {
		o.Price = *p.Price
	}
	if o.Category.ByWeight != nil {
		bw := *o.Category.ByWeight
		if p.ServiceType != nil {
			bw.ServiceType = *p.ServiceType
		}
		if p.WeightKg != nil {
			bw.WeightKg = *p.WeightKg
		}
		o.Category.ByWeight = &bw
	}
	if o.Category.ByUnit != nil {
		bu := *o.Category.ByUnit
		if p.ItemKind != nil {
			bu.ItemKind = *p.ItemKind
		}
		if p.UnitPrice != nil {
			v := *p.UnitPrice
			bu.UnitPrice = &v
		}
		if p.Quantity != nil {
			bu.Quantity = *p.Quantity
		}
		o.Category.ByUnit = &bu
	}
	return o
}

type Filter struct {
	Range  DateRange
	Status *Status
}
