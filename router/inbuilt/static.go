package inbuilt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/method"
	"github.com/indigo-web/h2tp/http/uri"
)

// catcher serves every request under the prefix which didn't match any route.
type catcher struct {
	prefix string
	allow  string
	route  *route
}

func (c catcher) allows(m method.Method) bool {
	return len(c.allow) == 0 || m == method.GET || m == method.HEAD
}

// Catch registers a handler for all requests starting with the prefix, if no other routes
// matched them. Catchers are checked in order of their registration.
func (r *Router) Catch(prefix string, handler http.Handler) *Router {
	return r.catch(prefix, "", handler)
}

func (r *Router) catch(prefix, allow string, handler http.Handler) *Router {
	prefix = strings.TrimSuffix(r.prefix+prefix, "/")

	for _, c := range r.catchers {
		if c.prefix == prefix {
			panic(fmt.Errorf("catcher already registered: %s", prefix))
		}
	}

	r.catchers = append(r.catchers, catcher{
		prefix: prefix,
		allow:  allow,
		route: &route{
			handler: handler,
			after:   r.after,
		},
	})

	return r
}

// Static serves files from the root directory for every request under the prefix. Only GET and
// HEAD requests are allowed. Paths trying to escape the root are answered with 404, the same
// as files which don't exist and directories.
func (r *Router) Static(prefix, root string) *Router {
	trim := strings.TrimSuffix(r.prefix+prefix, "/")

	return r.catch(prefix, method.Join(method.GET, method.HEAD), http.HandlerFunc(
		func(request *http.Request, response *http.Response) error {
			path, err := uri.Decode(request.Path())
			if err != nil {
				response.Error(ErrUndefined)
				return nil
			}

			path = strings.TrimPrefix(path, trim)
			if !isSafe(path) {
				response.Error(ErrNotFound)
				return nil
			}

			if err = response.File(filepath.Join(root, filepath.FromSlash(path))); err != nil {
				response.Error(err)
			}

			return nil
		},
	))
}

// isSafe checks for path traversal, that is any segment consisting of double dots.
func isSafe(path string) bool {
	for len(path) > 0 {
		var segment string
		segment, path, _ = strings.Cut(path, "/")
		if segment == ".." || strings.Contains(segment, "\\") {
			return false
		}
	}

	return true
}
