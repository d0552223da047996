package inbuilt

import (
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/method"
	"github.com/indigo-web/h2tp/http/status"
)

var (
	ErrNotFound = status.ErrNotFound
	// ErrUndefined is returned for request targets the router can't resolve at all, like the
	// asterisk form or an invalid urlencoded path.
	ErrUndefined = status.NewError(status.BadRequest, "request target is not in origin form")
)

// MethodNotAllowedError means the resource exists, but the method isn't registered for it.
type MethodNotAllowedError struct {
	// Allowed is the value of the Allow header.
	Allowed string
}

func (m *MethodNotAllowedError) Error() string {
	return "method not allowed, allowed are: " + m.Allowed
}

func (m *MethodNotAllowedError) Unwrap() error {
	return status.ErrMethodNotAllowed
}

// RedirectError is returned when the path isn't registered, however it is with the trailing
// slash toggled.
type RedirectError struct {
	Location string
}

func (r *RedirectError) Error() string {
	return "redirect to " + r.Location
}

// RetryAfterError is returned for paths under maintenance.
type RetryAfterError struct {
	After time.Duration
}

func (r *RetryAfterError) Error() string {
	return "under maintenance, retry after " + r.After.String()
}

func (r *RetryAfterError) Unwrap() error {
	return status.ErrServiceUnavailable
}

// ErrorHandler answers the routing error. The returned error is treated the same way as if it
// was returned by a handler.
type ErrorHandler func(request *http.Request, response *http.Response, err error) error

// DefaultErrorHandler answers with 405 and the Allow header to methods not allowed, except
// OPTIONS requests, which are answered with 200. Redirects are 308 with the Location header,
// maintenance is 503 with the Retry-After header. Everything else is passed to Response.Error.
func DefaultErrorHandler(request *http.Request, response *http.Response, err error) error {
	var (
		notAllowed *MethodNotAllowedError
		redirect   *RedirectError
		retry      *RetryAfterError
	)

	switch {
	case errors.As(err, &notAllowed):
		response.Header("Allow", notAllowed.Allowed)
		if request.Method() != method.OPTIONS {
			response.Code(status.MethodNotAllowed)
		}
	case errors.As(err, &redirect):
		response.
			Code(status.PermanentRedirect).
			Header("Location", redirect.Location)
	case errors.As(err, &retry):
		seconds := int(math.Ceil(retry.After.Seconds()))
		response.Error(err).Header("Retry-After", strconv.Itoa(seconds))
	default:
		response.Error(err)
	}

	return nil
}

// OnError replaces the error handler. Passing nil restores DefaultErrorHandler.
func (r *Router) OnError(handler ErrorHandler) *Router {
	if handler == nil {
		handler = DefaultErrorHandler
	}

	r.onError = handler
	return r
}

// NotFound sets the handler called for paths which aren't registered, in place of the error
// handler.
func (r *Router) NotFound(handler http.Handler) *Router {
	r.notFound = handler
	return r
}
