package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/antonminaichev/laundry-orders/internal/logger"
	"github.com/antonminaichev/laundry-orders/internal/ordercode"
	"github.com/antonminaichev/laundry-orders/internal/pricing"
	"github.com/antonminaichev/laundry-orders/internal/types/order"
	"github.com/antonminaichev/laundry-orders/internal/util/phone"
	"go.uber.org/zap"
)

const (
	DefaultListLimit    = 50
	MaxListLimit        = 500
	DefaultCodeAttempts = 3
)

type Metrics interface {
	OrderCreated()
	CodeCollision()
	StatusChanged(status string)
}

type nopMetrics struct{}

func (nopMetrics) OrderCreated()        {}
func (nopMetrics) CodeCollision()       {}
func (nopMetrics) StatusChanged(string) {}

type CreateRequest struct {
	CustomerName string
	Phone        string
	Note         string
	Category     order.Category
}

type Service struct {
	repo     OrderRepository
	pricing  *pricing.Engine
	codes    ordercode.Generator
	notifier Notifier
	policy   TransitionPolicy
	metrics  Metrics
	attempts int
	now      func() time.Time
}

type Option func(*Service)

func WithPolicy(p TransitionPolicy) Option { return func(s *Service) { s.policy = p } }

func WithMetrics(m Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithCodeAttempts bounds how many codes are tried when inserts collide.
func WithCodeAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

func NewService(r OrderRepository, p *pricing.Engine, g ordercode.Generator, n Notifier, opts ...Option) *Service {
	s := &Service{
		repo:     r,
		pricing:  p,
		codes:    g,
		notifier: n,
		policy:   Permissive{},
		metrics:  nopMetrics{},
		attempts: DefaultCodeAttempts,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) validateCategory(c order.Category, verr *ValidationError) {
	if !c.Consistent() {
		verr.add("category", "exactly one of by_weight or by_unit must be set and match kind")
		return
	}
	if bw := c.ByWeight; bw != nil {
		if !s.pricing.KnownServiceType(bw.ServiceType) {
			verr.add("service_type", fmt.Sprintf("unknown service type %q", bw.ServiceType))
		}
		if !(bw.WeightKg > 0) {
			verr.add("weight_kg", "must be greater than 0")
		}
	}
	if bu := c.ByUnit; bu != nil {
		if strings.TrimSpace(bu.ItemKind) == "" {
			verr.add("item_kind", "is required")
		}
		if !(bu.Quantity > 0) {
			verr.add("quantity", "must be greater than 0")
		}
		if bu.UnitPrice != nil && *bu.UnitPrice < 0 {
			verr.add("unit_price", "must not be negative")
		}
	}
}

// storedPhone keeps the normalized number when it is deliverable and the trimmed input otherwise.
func storedPhone(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if n, ok := phone.Normalize(raw); ok {
		return n
	}
	return raw
}

func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (*order.Order, error) {
	verr := &ValidationError{}
	name := strings.TrimSpace(req.CustomerName)
	if name == "" {
		verr.add("customer_name", "is required")
	}
	s.validateCategory(req.Category, verr)
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	cat := s.pricing.Resolve(req.Category)
	if cat.ByUnit != nil {
		bu := *cat.ByUnit
		bu.ItemKind = strings.TrimSpace(bu.ItemKind)
		cat.ByUnit = &bu
	}
	price, err := s.pricing.Compute(cat)
	if err != nil {
		verr.add("category", err.Error())
		return nil, verr
	}

	now := s.now().UTC().Truncate(time.Millisecond)
	o := order.Order{
		CustomerName: name,
		Phone:        storedPhone(req.Phone),
		Category:     cat,
		Price:        price,
		Note:         strings.TrimSpace(req.Note),
		Status:       order.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for attempt := 1; ; attempt++ {
		code, err := s.codes.Generate(ctx, now)
		if err != nil {
			return nil, fmt.Errorf("generate code: %w", err)
		}
		o.Code = code
		err = s.repo.InsertOrder(ctx, &o)
		if err == nil {
			break
		}
		if !errors.Is(err, order.ErrDuplicateCode) {
			return nil, err
		}
		s.metrics.CodeCollision()
		logger.Log.Warn("order code collision", zap.String("code", code), zap.Int("attempt", attempt))
		if attempt >= s.attempts {
			return nil, fmt.Errorf("after %d attempts: %w", attempt, err)
		}
	}

	s.metrics.OrderCreated()
	logger.Log.Info("order created",
		zap.String("code", o.Code), zap.String("kind", string(o.Category.Kind)), zap.Int64("price", o.Price))
	s.notifier.NotifyCreated(ctx, o)
	return &o, nil
}

func (s *Service) FindOrder(ctx context.Context, code string) (*order.Order, error) {
	return s.repo.FindOrderByCode(ctx, strings.TrimSpace(code))
}

func (s *Service) ListOrders(ctx context.Context, limit int) ([]order.Order, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.repo.ListRecentOrders(ctx, limit)
}

func (s *Service) UpdateStatus(ctx context.Context, code string, st order.Status) (*order.Order, error) {
	return s.UpdateFields(ctx, code, order.Patch{Status: &st})
}

func (s *Service) validatePatch(p order.Patch, verr *ValidationError) {
	if p.Empty() {
		verr.add("patch", "no fields to update")
	}
	if p.Status != nil && !p.Status.Valid() {
		verr.add("status", fmt.Sprintf("unknown status %q", *p.Status))
	}
	if p.CustomerName != nil && strings.TrimSpace(*p.CustomerName) == "" {
		verr.add("customer_name", "must not be empty")
	}
	if p.Price != nil && *p.Price < 0 {
		verr.add("price", "must not be negative")
	}
	if p.ServiceType != nil && !s.pricing.KnownServiceType(*p.ServiceType) {
		verr.add("service_type", fmt.Sprintf("unknown service type %q", *p.ServiceType))
	}
	if p.WeightKg != nil && !(*p.WeightKg > 0) {
		verr.add("weight_kg", "must be greater than 0")
	}
	if p.ItemKind != nil && strings.TrimSpace(*p.ItemKind) == "" {
		verr.add("item_kind", "must not be empty")
	}
	if p.Quantity != nil && !(*p.Quantity > 0) {
		verr.add("quantity", "must be greater than 0")
	}
	if p.UnitPrice != nil && *p.UnitPrice < 0 {
		verr.add("unit_price", "must not be negative")
	}
}

func validatePatchKind(c order.Category, p order.Patch, verr *ValidationError) {
	weightFields := p.ServiceType != nil || p.WeightKg != nil
	unitFields := p.ItemKind != nil || p.UnitPrice != nil || p.Quantity != nil
	if c.ByWeight != nil && unitFields {
		verr.add("category", "order is priced by weight")
	}
	if c.ByUnit != nil && weightFields {
		verr.add("category", "order is priced by unit")
	}
}

// UpdateFields applies a staff correction. Changing category fields without an
// explicit price recomputes the price from the merged category.
func (s *Service) UpdateFields(ctx context.Context, code string, p order.Patch) (*order.Order, error) {
	code = strings.TrimSpace(code)
	verr := &ValidationError{}
	if code == "" {
		verr.add("code", "is required")
	}
	s.validatePatch(p, verr)
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}

	current, err := s.repo.FindOrderByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	validatePatchKind(current.Category, p, verr)
	if err := verr.errOrNil(); err != nil {
		return nil, err
	}
	if p.Status != nil && *p.Status != current.Status {
		if err := s.policy.Check(current.Status, *p.Status); err != nil {
			return nil, err
		}
	}

	if p.CustomerName != nil {
		v := strings.TrimSpace(*p.CustomerName)
		p.CustomerName = &v
	}
	if p.Phone != nil {
		v := storedPhone(*p.Phone)
		p.Phone = &v
	}
	if p.Note != nil {
		v := strings.TrimSpace(*p.Note)
		p.Note = &v
	}
	if p.ItemKind != nil {
		v := strings.TrimSpace(*p.ItemKind)
		p.ItemKind = &v
	}
	// A new item kind without an explicit unit price takes the kind's table price.
	if bu := current.Category.ByUnit; bu != nil && p.ItemKind != nil && p.UnitPrice == nil && *p.ItemKind != bu.ItemKind {
		fresh := s.pricing.Resolve(order.Category{Kind: order.KindByUnit, ByUnit: &order.ByUnit{ItemKind: *p.ItemKind}})
		p.UnitPrice = fresh.ByUnit.UnitPrice
	}
	if p.TouchesCategory() && p.Price == nil {
		merged := p.Apply(*current)
		price, err := s.pricing.Compute(s.pricing.Resolve(merged.Category))
		if err != nil {
			verr.add("category", err.Error())
			return nil, verr
		}
		p.Price = &price
	}

	updated, err := s.repo.UpdateOrderFields(ctx, code, p)
	if err != nil {
		return nil, err
	}

	if p.Status != nil && *p.Status != current.Status {
		s.metrics.StatusChanged(string(*p.Status))
		logger.Log.Info("order status changed",
			zap.String("code", code), zap.String("from", string(current.Status)), zap.String("to", string(*p.Status)))
		s.notifier.NotifyStatusChanged(ctx, *updated, *p.Status)
	}
	return updated, nil
}
