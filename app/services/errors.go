package services

import "errors"

// Kind tells callers whether a request was refused before reaching the data
// store or failed inside it.
type Kind string

const (
	KindInvalidRequest Kind = "invalid_request"
	KindStoreFailure   Kind = "store_failure"
)

// Error carries a Kind alongside the underlying error. Its message is the
// underlying message unchanged.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// Invalid marks err as a rejected request.
func Invalid(err error) error {
	return &Error{Kind: KindInvalidRequest, Err: err}
}

func storeFailure(err error) error {
	return &Error{Kind: KindStoreFailure, Err: err}
}

// KindOf reports the Kind of err. Errors that did not come from this package
// count as store failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindStoreFailure
}
