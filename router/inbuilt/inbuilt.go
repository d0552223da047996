// Package inbuilt is the router shipped together with h2tp. It resolves requests by their path
// and method using a radix tree, supports dynamic segments, groups, middlewares, static files
// and maintenance windows.
package inbuilt

import (
	"errors"
	"strings"
	"sync"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/method"
	"github.com/indigo-web/h2tp/http/uri"
	"github.com/indigo-web/h2tp/router/inbuilt/internal/radix"
)

var _ http.Handler = new(Router)

// Router is a built-in implementation of http.Handler. Routes must be registered before the
// server starts serving, as registration isn't synchronized. Maintenance windows are the only
// thing safe to be changed at runtime.
type Router struct {
	*state
	prefix string
	after  *chain
}

type state struct {
	tree      *radix.Node[*resource]
	resources map[string]*resource
	catchers  []catcher
	before    []Middleware
	onError   ErrorHandler
	notFound  http.Handler

	mu          sync.RWMutex
	maintenance []window
}

// resource holds handlers of every method registered under the same path.
type resource struct {
	handlers [method.Count + 1]*route
	allow    string
}

// route binds a handler to the chain of after-middlewares of the group it was registered in.
type route struct {
	handler http.Handler
	after   *chain
}

func (r *route) Handle(request *http.Request, response *http.Response) error {
	if !r.after.proceed(request, response) {
		return nil
	}

	return r.handler.Handle(request, response)
}

// New constructs a new instance of the inbuilt router
func New() *Router {
	return &Router{
		state: &state{
			tree:      radix.New[*resource](),
			resources: make(map[string]*resource),
			onError:   DefaultErrorHandler,
		},
		after: new(chain),
	}
}

// Group creates a sub-router sharing the routes with the current one. All the paths registered
// on the group are prefixed. The group inherits the after-middlewares of the parent, however
// adding new ones to the group doesn't affect the parent.
func (r *Router) Group(prefix string) *Router {
	return &Router{
		state:  r.state,
		prefix: r.prefix + prefix,
		after:  &chain{middlewares: append([]Middleware(nil), r.after.middlewares...)},
	}
}

// Handle dispatches the request. Before-middlewares run first, then the request is resolved.
// Routing errors are passed to the error handler, otherwise after-middlewares run and the
// resolved handler is called, unless any of the middlewares returned Return.
func (r *Router) Handle(request *http.Request, response *http.Response) error {
	if !proceed(r.before, request, response) {
		return nil
	}

	handler, err := r.Find(request)
	if err != nil {
		if r.notFound != nil && errors.Is(err, ErrNotFound) {
			return r.notFound.Handle(request, response)
		}

		return r.onError(request, response, err)
	}

	return handler.Handle(request, response)
}

// Find resolves the handler of the request. Values of dynamic segments are stored into
// request.Vars. The returned handler runs after-middlewares itself. Possible errors are
// ErrUndefined, ErrNotFound, *MethodNotAllowedError, *RedirectError and *RetryAfterError.
func (r *Router) Find(request *http.Request) (http.Handler, error) {
	target := request.Target()
	if len(target) == 0 || target[0] != '/' {
		return nil, ErrUndefined
	}

	u, err := request.URL()
	if err != nil {
		return nil, ErrUndefined
	}

	path, err := uri.Decode(u.Path())
	if err != nil {
		return nil, ErrUndefined
	}

	if after, found := r.underMaintenance(path); found {
		return nil, &RetryAfterError{After: after}
	}

	res, found := r.tree.Lookup(path, request.Vars)
	if !found {
		return r.miss(request, path, u.Path(), u.RawQuery())
	}

	m := request.Method()
	handler := res.handlers[m]
	if handler == nil && m == method.HEAD {
		handler = res.handlers[method.GET]
	}

	if handler == nil {
		request.Env.AllowedMethods = res.allow
		return nil, &MethodNotAllowedError{Allowed: res.allow}
	}

	return handler, nil
}

// miss returns a catcher serving the path, or the redirect to the same path with the trailing
// slash toggled if such a route exists, or ErrNotFound otherwise.
func (r *Router) miss(request *http.Request, path, raw, query string) (http.Handler, error) {
	for _, c := range r.catchers {
		if hasPathPrefix(path, c.prefix) {
			if !c.allows(request.Method()) {
				request.Env.AllowedMethods = c.allow
				return nil, &MethodNotAllowedError{Allowed: c.allow}
			}

			return c.route, nil
		}
	}

	alt, altRaw := toggleSlash(path), toggleSlash(raw)
	if len(alt) == 0 || len(altRaw) == 0 {
		return nil, ErrNotFound
	}

	if _, found := r.tree.Lookup(alt, nil); found {
		if len(query) > 0 {
			altRaw += "?" + query
		}

		return nil, &RedirectError{Location: altRaw}
	}

	return nil, ErrNotFound
}

func toggleSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path[:len(path)-1]
	}

	return path + "/"
}

// hasPathPrefix reports whether the path is the prefix itself or lies beneath it.
func hasPathPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}

	return len(path) == len(prefix) || strings.HasSuffix(prefix, "/") || path[len(prefix)] == '/'
}
