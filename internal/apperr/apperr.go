package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error so the HTTP boundary can map it to a status
// code without string matching.
type Kind int

const (
	KindUnknown Kind = iota
	// KindValidation covers business-rule violations (empty cart, mixed
	// catalog, blank neighborhood). Never retried.
	KindValidation
	// KindNotFound covers unknown products, neighborhoods and orders.
	KindNotFound
	// KindGateway covers preference-creation and payment-fetch failures.
	KindGateway
	// KindSignature covers webhook signature verification failures.
	KindSignature
	// KindIntegrity covers broken invariants between the gateway and the
	// order store, e.g. a payment referencing an order that does not exist.
	KindIntegrity
)

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(msg string) error {
	return &Error{Kind: KindValidation, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

func Gateway(msg string, err error) error {
	return &Error{Kind: KindGateway, Msg: msg, Err: err}
}

func Signature(msg string) error {
	return &Error{Kind: KindSignature, Msg: msg}
}

func Integrity(msg string) error {
	return &Error{Kind: KindIntegrity, Msg: msg}
}

// KindOf walks the wrap chain and returns the kind of the first
// *Error found, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the client-safe message of a classified error. Wrapped
// causes (gateway responses, SQL errors) are never exposed.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg
	}
	return "internal error"
}
