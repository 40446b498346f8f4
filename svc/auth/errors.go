package auth

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies an error for the transport layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindRateLimited
	KindStorage
	KindDelivery
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindRateLimited:
		return "rate_limited"
	case KindStorage:
		return "storage"
	case KindDelivery:
		return "delivery"
	default:
		return "internal"
	}
}

// Error is the error type returned by this package. Msg is safe to show to
// a client; Err holds the cause and may carry internal detail.
type Error struct {
	Kind       Kind
	Op         string
	Msg        string
	Err        error
	RetryAfter time.Duration // set for KindRateLimited
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil && e.Err.Error() != e.Msg:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Msg, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Msg)
	case e.Err != nil && e.Err.Error() != e.Msg:
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	default:
		return e.Msg
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of the outermost *Error in err's chain, or
// KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Sentinel errors. Compare with errors.Is.
var (
	ErrInvalidCredentials = &Error{Kind: KindAuthentication, Msg: "invalid email or password"}
	ErrInvalidCode        = &Error{Kind: KindAuthentication, Msg: "invalid or expired code"}
	ErrInvalidToken       = &Error{Kind: KindAuthentication, Msg: "invalid or expired token"}
	ErrMissingToken       = &Error{Kind: KindAuthentication, Msg: "authentication required"}
	ErrMfaRequired        = &Error{Kind: KindAuthorization, Msg: "second factor required"}
	ErrEmailTaken         = &Error{Kind: KindValidation, Msg: "email is already registered"}
	ErrPasswordMismatch   = &Error{Kind: KindValidation, Msg: "passwords do not match"}
	ErrMfaNotEnabled      = &Error{Kind: KindValidation, Msg: "second factor is not enabled for this account"}
	ErrEmailMfaInactive   = &Error{Kind: KindValidation, Msg: "email codes are not enabled for this account"}
	ErrTooManyAttempts    = &Error{Kind: KindRateLimited, Msg: "too many attempts, try again later"}
	ErrDeliveryFailed     = &Error{Kind: KindDelivery, Msg: "failed to deliver verification code"}
	ErrStorage            = &Error{Kind: KindStorage, Msg: "storage failure"}
)

// ErrNotFound is returned by Storage implementations for missing rows.
var ErrNotFound = errors.New("auth: record not found")

// wrap attaches op to a sentinel so errors.Is still matches it.
func wrap(op string, sentinel *Error) error {
	return &Error{Kind: sentinel.Kind, Op: op, Msg: sentinel.Msg, Err: sentinel}
}

func storageError(op string, err error) error {
	return &Error{Kind: KindStorage, Op: op, Msg: ErrStorage.Msg, Err: errors.Join(ErrStorage, err)}
}

func validationError(op string, err error) error {
	return &Error{Kind: KindValidation, Op: op, Msg: "validation failed", Err: err}
}

func rateLimited(op string, retryAfter time.Duration) error {
	return &Error{
		Kind:       KindRateLimited,
		Op:         op,
		Msg:        ErrTooManyAttempts.Msg,
		Err:        ErrTooManyAttempts,
		RetryAfter: retryAfter,
	}
}

func internalError(op string, err error) error {
	return &Error{Kind: KindInternal, Op: op, Msg: "internal error", Err: err}
}

// ErrInvalidConfig is returned by NewService for unusable settings.
var ErrInvalidConfig = errors.New("auth: invalid configuration")
