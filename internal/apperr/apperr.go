package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for propagation policy: who should see it,
// whether a retry makes sense, and which HTTP class it maps to.
type Kind int

const (
	// Validation is a user-actionable problem (empty cart, bad selection).
	Validation Kind = iota + 1
	// NotFound covers missing resources owned by the caller.
	NotFound
	// Conflict covers state conflicts that need operator or caller action.
	Conflict
	// Gateway covers failures of an external dependency; retryable.
	Gateway
	// Security covers authentication/signature failures.
	Security
	// Internal covers operator misconfiguration and invariant violations.
	Internal
)

// Machine-readable error codes carried alongside the human message so
// callers can branch without string-matching.
const (
	CodeEmptyCart              = "EMPTY_CART"
	CodeAddressNotFound        = "ADDRESS_NOT_FOUND"
	CodeNoPrimaryAddress       = "NO_PRIMARY_ADDRESS"
	CodeInvalidWeight          = "INVALID_WEIGHT"
	CodeInvalidShippingService = "INVALID_SHIPPING_SERVICE"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"
	CodeDuplicateSubmission    = "DUPLICATE_SUBMISSION"
	CodeOrderNotFound          = "ORDER_NOT_FOUND"
	CodeAlreadyPaid            = "ALREADY_PAID"
	CodeTotalMismatch          = "TOTAL_MISMATCH"
	CodePaymentGateway         = "PAYMENT_GATEWAY"
	CodeShippingGateway        = "SHIPPING_GATEWAY"
	CodeInvalidSignature       = "INVALID_SIGNATURE"
	CodeStockExhaustedAtSettle = "STOCK_EXHAUSTED_AT_SETTLEMENT"
	CodeOrderNotPaid           = "ORDER_NOT_PAID"
	CodeInvalidStatus          = "INVALID_STATUS"
	CodeInvalidProduct         = "INVALID_PRODUCT"
	CodeVariantNotFound        = "VARIANT_NOT_FOUND"
	CodeInternal               = "INTERNAL"
)

// Error is a tagged error carrying a kind, a machine code and a human
// message. The wrapped cause, if any, is reachable via errors.Unwrap.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func Newf(kind Kind, code, format string, args ...any) *Error {
	return &Error{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, code, message string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf reports the Kind of err, or Internal for untagged errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}

// CodeOf reports the machine code of err, or CodeInternal for untagged errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// HTTPStatus maps a kind to the HTTP status class the taxonomy assigns it.
func HTTPStatus(kind Kind) int {
	switch kind {
	case Validation:
		return 400
	case NotFound:
		return 404
	case Conflict:
		return 409
	case Gateway:
		return 502
	case Security:
		return 401
	default:
		return 500
	}
}
