package inbuilt

import "github.com/indigo-web/h2tp/http"

// Control tells the router what to do after the middleware returned.
type Control uint8

const (
	// Continue passes the request to the next middleware in the chain.
	Continue Control = iota
	// Break skips the rest of the chain, but the dispatch goes on.
	Break
	// Return aborts the dispatch. The response is written as the middleware left it.
	Return
)

// Middleware inspects or modifies the request and the response before the handler is called.
type Middleware func(request *http.Request, response *http.Response) Control

type chain struct {
	middlewares []Middleware
}

func (c *chain) proceed(request *http.Request, response *http.Response) bool {
	return proceed(c.middlewares, request, response)
}

// proceed runs the middlewares in order. False is returned if the dispatch must be aborted.
func proceed(middlewares []Middleware, request *http.Request, response *http.Response) bool {
	for _, mware := range middlewares {
		switch mware(request, response) {
		case Break:
			return true
		case Return:
			return false
		}
	}

	return true
}

// Before adds middlewares which are run before the request is routed, so they apply to every
// request regardless of the group they were added on, including requests ending up as routing
// errors.
func (r *Router) Before(middlewares ...Middleware) *Router {
	r.before = append(r.before, middlewares...)
	return r
}

// After adds middlewares which are run after the request is routed and right before the
// handler is called. They apply to the routes of the current group and its subgroups created
// afterward, both already registered and registered in future.
func (r *Router) After(middlewares ...Middleware) *Router {
	r.after.middlewares = append(r.after.middlewares, middlewares...)
	return r
}
