// Package errs defines the error kinds shared by the product gateway and
// the HTTP handlers.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for status mapping.
type Kind int

const (
	// KindGateway is a store fault or any error without an explicit kind.
	KindGateway Kind = iota
	// KindValidation carries one or more field violations.
	KindValidation
	// KindNotFound means no record exists for the given identifier.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "gateway"
	}
}

// FieldViolation is a single field-level validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the error type produced by the gateway.
type Error struct {
	Kind       Kind
	Op         string
	Violations []FieldViolation
	Err        error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindValidation:
		return fmt.Sprintf("%s: validation failed: %v", e.Op, e.Messages())
	case KindNotFound:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		if e.Err == nil {
			return e.Op + ": gateway error"
		}
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Messages returns the violation messages in order.
func (e *Error) Messages() []string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// Validation builds a KindValidation error.
func Validation(op string, violations ...FieldViolation) *Error {
	return &Error{Kind: KindValidation, Op: op, Violations: violations}
}

// NotFound builds a KindNotFound error for the given identifier.
func NotFound(op, id string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Err: fmt.Errorf("product with ID %s not found", id)}
}

// Gateway wraps a store fault.
func Gateway(op string, err error) *Error {
	return &Error{Kind: KindGateway, Op: op, Err: err}
}

// KindOf reports the kind of err. Errors not produced by this package are
// KindGateway.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindGateway
}

// Violations returns the field violations carried by err, if any.
func Violations(err error) []FieldViolation {
	var e *Error
	if errors.As(err, &e) {
		return e.Violations
	}
	return nil
}

// IsNotFound reports whether err is a KindNotFound error.
func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}
