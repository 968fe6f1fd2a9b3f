package recommend

import (
	"errors"
	"fmt"
	"net/http"
)

// Outcome classifies how a recommendation request ended.
type Outcome string

const (
	OutcomeSuccess       Outcome = "Success"
	OutcomeInvalidInput  Outcome = "InvalidInput"
	OutcomeNotFound      Outcome = "NotFound"
	OutcomeUpstreamError Outcome = "UpstreamError"
	OutcomeInternalError Outcome = "InternalError"
)

// internalMessage is returned to clients for every InternalError.
const internalMessage = "Failed to compute recommendations."

// Error is the terminal error of the pipeline. Message is safe to show to
// clients; Err holds the cause and is only logged.
type Error struct {
	Outcome Outcome
	Message string
	// Status is the upstream HTTP status for OutcomeUpstreamError.
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Outcome, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Outcome, e.Message, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode maps the outcome to an HTTP status.
func (e *Error) StatusCode() int {
	switch e.Outcome {
	case OutcomeInvalidInput:
		return http.StatusUnprocessableEntity
	case OutcomeNotFound:
		return http.StatusNotFound
	case OutcomeUpstreamError:
		if e.Status >= 400 && e.Status <= 599 {
			return e.Status
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// OutcomeOf reports the outcome carried by err. Errors that are not *Error
// count as internal.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Outcome
	}
	return OutcomeInternalError
}

func invalidInput(format string, args ...any) *Error {
	return &Error{Outcome: OutcomeInvalidInput, Message: fmt.Sprintf(format, args...)}
}

func notFound(id int) *Error {
	return &Error{Outcome: OutcomeNotFound, Message: fmt.Sprintf("Film with id %d not found.", id)}
}

func upstream(status int, err error) *Error {
	return &Error{
		Outcome: OutcomeUpstreamError,
		Message: fmt.Sprintf("Review service request failed with status code %d.", status),
		Status:  status,
		Err:     err,
	}
}

func internal(err error) *Error {
	return &Error{Outcome: OutcomeInternalError, Message: internalMessage, Err: err}
}
