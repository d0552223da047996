package inbuilt

import (
	"fmt"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/method"
)

/*
This file is responsible for registering the routes
*/

// Route registers the handler for the method and the path, prefixed by the group prefix.
// Paths may contain dynamic segments, like /user/{id}. Their values are available via
// request.Vars. It panics if the route is already registered or the path is malformed.
func (r *Router) Route(m method.Method, path string, handler http.Handler) *Router {
	if m == method.Unknown {
		panic("cannot register a handler for unknown method")
	}

	path = r.prefix + path
	if len(path) == 0 {
		path = "/"
	}

	res, found := r.resources[path]
	if !found {
		res = new(resource)
		if err := r.tree.Insert(path, res); err != nil {
			panic(fmt.Errorf("%s %s: %w", m, path, err))
		}

		r.resources[path] = res
	}

	if res.handlers[m] != nil {
		panic(fmt.Errorf("route already registered: %s %s", m, path))
	}

	res.handlers[m] = &route{
		handler: handler,
		after:   r.after,
	}
	res.allow = allowed(res)

	return r
}

// allowed lists registered methods. HEAD is implicitly allowed as long as GET is.
func allowed(res *resource) string {
	methods := make([]method.Method, 0, method.Count)
	for _, m := range method.List {
		if res.handlers[m] != nil || (m == method.HEAD && res.handlers[method.GET] != nil) {
			methods = append(methods, m)
		}
	}

	return method.Join(methods...)
}

// Get registers a handler for GET-requests. HEAD-requests are served by it too, unless they
// have a handler on their own.
func (r *Router) Get(path string, handler http.HandlerFunc) *Router {
	return r.Route(method.GET, path, handler)
}

// Head registers a handler for HEAD-requests
func (r *Router) Head(path string, handler http.HandlerFunc) *Router {
	return r.Route(method.HEAD, path, handler)
}

// Post registers a handler for POST-requests
func (r *Router) Post(path string, handler http.HandlerFunc) *Router {
	return r.Route(method.POST, path, handler)
}

// Put registers a handler for PUT-requests
func (r *Router) Put(path string, handler http.HandlerFunc) *Router {
	return r.Route(method.PUT, path, handler)
}

// Delete registers a handler for DELETE-requests
func (r *Router) Delete(path string, handler http.HandlerFunc) *Router {
	return r.Route(method.DELETE, path, handler)
}

// Patch registers a handler for PATCH-requests
func (r *Router) Patch(path string, handler http.HandlerFunc) *Router {
	return r.Route(method.PATCH, path, handler)
}

// Options registers a handler for OPTIONS-requests. Without it, OPTIONS-requests are answered
// with the Allow header by the error handler.
func (r *Router) Options(path string, handler http.HandlerFunc) *Router {
	return r.Route(method.OPTIONS, path, handler)
}
