package order

import (
	"fmt"

	"github.com/antonminaichev/laundry-orders/internal/types/order"
)

// TransitionPolicy decides whether a status change is allowed.
type TransitionPolicy interface {
	Check(from, to order.Status) error
}

// Permissive allows any status to follow any other, so staff can correct mistakes.
type Permissive struct{}

func (Permissive) Check(_, _ order.Status) error { return nil }

// Strict only moves forward through the lifecycle. Re-setting the current status is allowed.
type Strict struct{}

func (Strict) Check(from, to order.Status) error {
	if to.Rank() < from.Rank() {
		return fmt.Errorf("%w: %s -> %s", order.ErrInvalidTransition, from, to)
	}
	return nil
}

func PolicyFor(strict bool) TransitionPolicy {
	if strict {
		return Strict{}
	}
	return Permissive{}
}
