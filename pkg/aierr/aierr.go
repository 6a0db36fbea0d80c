// Package aierr defines the error every pipeline operation returns and the
// translation of lower-level failures into it.
package aierr

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jasonyy2018/rresume/pkg/llm"
	"github.com/jasonyy2018/rresume/pkg/resume"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// InternalFailure is anything unexpected, including model output that
	// does not survive normalization.
	InternalFailure Kind = iota
	// BadRequest is a caller fault: ineligible provider, oversized file,
	// malformed import.
	BadRequest
	// UpstreamUnavailable means the model provider failed, timed out or
	// returned nothing usable.
	UpstreamUnavailable
)

// String returns the wire code of the kind.
func (k Kind) String() string {
	switch k {
	case BadRequest:
		return "BAD_REQUEST"
	case UpstreamUnavailable:
		return "BAD_GATEWAY"
	default:
		return "INTERNAL_SERVER_ERROR"
	}
}

// BadGatewayMessage is shown for any upstream 502, whatever the operation.
const BadGatewayMessage = "Bad Gateway (502): The server took too long to respond or encountered an error. Please try again with a smaller file or a different AI provider."

// UnexpectedMessage is shown for failures nothing else recognises.
const UnexpectedMessage = "an unexpected error occurred"

// Error is a classified pipeline failure. Message is safe to show to the
// user; Detail and Cause are for logs.
type Error struct {
	Kind    Kind
	Message string
	Detail  map[string]any
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Newf creates an error of the given kind.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// BadRequestf creates a BadRequest error.
func BadRequestf(format string, args ...any) *Error {
	return Newf(BadRequest, format, args...)
}

// Upstream creates an UpstreamUnavailable error with the given cause.
func Upstream(cause error, message string) *Error {
	return &Error{Kind: UpstreamUnavailable, Message: message, Cause: cause}
}

// Translate converts any error into an *Error. It returns nil for nil.
func Translate(err error) *Error {
	if err == nil {
		return nil
	}

	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}

	var verr *resume.ValidationError
	if errors.As(err, &verr) {
		kind := InternalFailure
		if verr.Origin == resume.OriginInput {
			kind = BadRequest
		}
		return &Error{
			Kind:    kind,
			Message: verr.Summary(),
			Detail:  map[string]any{"origin": verr.Origin.String(), "issues": verr.Flatten()},
			Cause:   err,
		}
	}

	var pe *llm.ProviderError
	if errors.As(err, &pe) {
		detail := map[string]any{
			"provider":      pe.Provider,
			"status":        pe.StatusCode,
			"originalError": pe.Err.Error(),
		}
		if pe.StatusCode == http.StatusBadGateway {
			return &Error{Kind: UpstreamUnavailable, Message: BadGatewayMessage, Detail: detail, Cause: err}
		}
		return &Error{
			Kind:    UpstreamUnavailable,
			Message: "AI Provider Error: " + err.Error(),
			Detail:  detail,
			Cause:   err,
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return &Error{
			Kind:    UpstreamUnavailable,
			Message: "AI Provider Error: " + err.Error(),
			Cause:   err,
		}
	}

	if errors.Is(err, llm.ErrAttachmentsUnsupported) {
		return &Error{Kind: BadRequest, Message: err.Error(), Cause: err}
	}

	return &Error{Kind: InternalFailure, Message: UnexpectedMessage, Cause: err}
}

// KindOf returns the kind err translates to.
func KindOf(err error) Kind {
	return Translate(err).Kind
}

// HTTPStatus returns the HTTP status code for err.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch KindOf(err) {
	case BadRequest:
		return http.StatusBadRequest
	case UpstreamUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
