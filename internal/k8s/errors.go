package k8s

import (
	"context"
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ErrorKind is the stable category reported to callers for a failed backend call.
type ErrorKind string

// Backend error kinds.
const (
	ErrorNotFound  ErrorKind = "not_found"
	ErrorForbidden ErrorKind = "forbidden"
	ErrorConflict  ErrorKind = "conflict"
	ErrorInvalid   ErrorKind = "invalid"
	ErrorTimeout   ErrorKind = "timeout"
	ErrorTransport ErrorKind = "transport"
)

// BackendError is a classified backend failure.
type BackendError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// Error renders the caller-facing string "ERROR: <kind>: <message>".
func (e *BackendError) Error() string {
	return fmt.Sprintf("ERROR: %s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error.
func (e *BackendError) Unwrap() error {
	return e.Err
}

// ClassifyError maps err onto one of the stable error kinds. A nil error
// returns nil.
func ClassifyError(err error) *BackendError {
	if err == nil {
		return nil
	}

	var be *BackendError
	if errors.As(err, &be) {
		return be
	}

	return &BackendError{Kind: classify(err), Message: message(err), Err: err}
}

func classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrUnknownResource), apierrors.IsNotFound(err), apierrors.IsGone(err):
		return ErrorNotFound
	case apierrors.IsForbidden(err), apierrors.IsUnauthorized(err):
		return ErrorForbidden
	case apierrors.IsConflict(err), apierrors.IsAlreadyExists(err):
		return ErrorConflict
	case errors.Is(err, ErrInvalidCoordinate), errors.Is(err, ErrIntentMismatch),
		apierrors.IsInvalid(err), apierrors.IsBadRequest(err),
		apierrors.IsMethodNotSupported(err), apierrors.IsNotAcceptable(err),
		apierrors.IsUnsupportedMediaType(err), apierrors.IsRequestEntityTooLargeError(err):
		return ErrorInvalid
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		apierrors.IsTimeout(err), apierrors.IsServerTimeout(err), apierrors.IsTooManyRequests(err):
		return ErrorTimeout
	default:
		return ErrorTransport
	}
}

// message prefers the API server's own message over the wrapped chain.
func message(err error) string {
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		if msg := status.Status().Message; msg != "" {
			return msg
		}
	}
	return err.Error()
}
