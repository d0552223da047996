package middleware

import (
	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/router/inbuilt"
)

// Redirect answers requests to the path with 307 Temporary Redirect to another location.
// The query is ignored while comparing.
func Redirect(from, to string) inbuilt.Middleware {
	return func(request *http.Request, response *http.Response) inbuilt.Control {
		if request.Path() != from {
			return inbuilt.Continue
		}

		response.
			Code(status.TemporaryRedirect).
			Header("Location", to)

		return inbuilt.Return
	}
}
