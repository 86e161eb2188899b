package payments

import (
	"errors"
	"strings"

	"github.com/phillip/event-registration-go/sentinel"
)

// Kind classifies a payment error for callers deciding on status codes and
// redelivery.
type Kind string

const (
	KindValidation  Kind = "validation_error"
	KindConflict    Kind = "conflict_error"
	KindNotFound    Kind = "not_found"
	KindGateway     Kind = "gateway_error"
	KindPersistence Kind = "persistence_error"
)

type Error struct {
	Kind    Kind
	Message string
	Fields  []string // missing or malformed inputs, validation only
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Fields) > 0 {
		msg += ": " + strings.Join(e.Fields, ", ")
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Fields: fields}
}

func NewNotFoundError(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func NewConflictError(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func NewGatewayError(message string, err error) *Error {
	return &Error{Kind: KindGateway, Message: message, Err: err}
}

func NewPersistenceError(message string, err error) *Error {
	return &Error{Kind: KindPersistence, Message: message, Err: err}
}

// KindOf returns the kind carried by err, or "" for foreign errors.
func KindOf(err error) Kind {
	var pErr *Error
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return ""
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// storeError translates store sentinels into payment errors.
func storeError(err error, message string) error {
	if err == nil {
		return nil
	}
	if KindOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: message, Err: err}
	case errors.Is(err, sentinel.ErrConflict):
		return NewConflictError(message, err)
	default:
		return NewPersistenceError(message, err)
	}
}
