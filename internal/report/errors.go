package report

import "net/http"

type Kind int

const (
	// KindConfig means no provider is usable; the message tells the operator how to fix it.
	KindConfig Kind = iota
	KindValidation
	// KindGeneration means the provider answered but produced no report text.
	KindGeneration
)

// Error is a failure raised by the generator itself rather than by a provider.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus is the status the HTTP API answers with for this error.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
