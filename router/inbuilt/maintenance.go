package inbuilt

import (
	"slices"
	"time"
)

type window struct {
	prefix     string
	retryAfter time.Duration
}

// Maintenance answers every request under the prefix with 503 Service Unavailable and the
// Retry-After header, until the prefix is resumed. Registering the same prefix again updates
// the retry interval. Safe for concurrent use with serving requests.
func (r *Router) Maintenance(prefix string, retryAfter time.Duration) *Router {
	prefix = r.prefix + prefix

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, w := range r.maintenance {
		if w.prefix == prefix {
			r.maintenance[i].retryAfter = retryAfter
			return r
		}
	}

	r.maintenance = append(r.maintenance, window{prefix, retryAfter})
	return r
}

// Resume ends the maintenance of the prefix.
func (r *Router) Resume(prefix string) *Router {
	prefix = r.prefix + prefix

	r.mu.Lock()
	r.maintenance = slices.DeleteFunc(r.maintenance, func(w window) bool {
		return w.prefix == prefix
	})
	r.mu.Unlock()

	return r
}

func (r *Router) underMaintenance(path string) (retryAfter time.Duration, found bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, w := range r.maintenance {
		if hasPathPrefix(path, w.prefix) {
			return w.retryAfter, true
		}
	}

	return 0, false
}
