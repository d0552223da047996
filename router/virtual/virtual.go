// Package virtual implements name-based virtual hosting: requests are dispatched between
// handlers by the value of their Host header.
package virtual

import (
	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/internal/address"
	"github.com/indigo-web/h2tp/router/virtual/internal/domain"
	"github.com/indigo-web/utils/strcomp"
)

var _ http.Handler = new(Router)

type virtualHost struct {
	Domain  string
	Handler http.Handler
}

type Router struct {
	hosts    []virtualHost
	fallback http.Handler
}

// New returns a new instance of the virtual Router
func New() *Router {
	return &Router{}
}

// Host adds a new virtual host. Default ports and the www. prefix are ignored, other ports
// must match exactly. If 0.0.0.0 is passed, the handler will be set as a default one
func (r *Router) Host(host string, handler http.Handler) *Router {
	if address.StripPort(host) == address.DefaultAddr {
		return r.Default(handler)
	}

	r.hosts = append(r.hosts, virtualHost{
		Domain:  domain.Normalize(host),
		Handler: handler,
	})
	return r
}

// Default sets the handler for requests, Host header value of which aren't matched.
// Note: only requests with 0 or 1 Host header values may be passed into the default handler.
// If there are more than 1 value, the request will be refused
func (r *Router) Default(handler http.Handler) *Router {
	r.fallback = handler
	return r
}

// Handle passes the request to the handler of the matching host. Requests without a
// matching host and no default handler are answered with 421 Misdirected Request, ones
// without the Host header at all with 400 Bad Request.
func (r *Router) Handle(request *http.Request, response *http.Response) error {
	handler, err := r.lookup(request)
	if err != nil {
		response.Error(err)
		return nil
	}

	return handler.Handle(request, response)
}

func (r *Router) lookup(request *http.Request) (http.Handler, error) {
	hosts := request.Headers.Values("host")

	switch len(hosts) {
	case 0:
		if r.fallback == nil {
			return nil, status.ErrBadRequest
		}

		return r.fallback, nil
	case 1:
	default:
		return nil, status.ErrBadRequest
	}

	host := domain.Normalize(hosts[0])
	for _, vhost := range r.hosts {
		if strcomp.EqualFold(vhost.Domain, host) {
			return vhost.Handler, nil
		}
	}

	if r.fallback == nil {
		return nil, status.ErrMisdirectedRequest
	}

	return r.fallback, nil
}
