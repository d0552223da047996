package middleware

import (
	"context"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/router/inbuilt"
)

// CustomContext replaces the context of every request.
func CustomContext(ctx context.Context) inbuilt.Middleware {
	return func(request *http.Request, _ *http.Response) inbuilt.Control {
		request.Ctx = ctx
		return inbuilt.Continue
	}
}
