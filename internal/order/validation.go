package order

import (
	"strings"

	"github.com/antonminaichev/laundry-orders/internal/util/render"
)

// ValidationError lists every rejected field of a request.
type ValidationError struct {
	Fields []render.FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	e.Fields = append(e.Fields, render.FieldError{Field: field, Message: msg})
}

func (e *ValidationError) errOrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
