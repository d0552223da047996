package middleware

import (
	"strings"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/router/inbuilt"
)

const DefaultServerHeader = "h2tp"

// ServerHeader sets the Server header of every response. Multiple values are joined by spaces.
func ServerHeader(values ...string) inbuilt.Middleware {
	value := strings.Join(values, " ")
	if len(value) == 0 {
		value = DefaultServerHeader
	}

	return func(_ *http.Request, response *http.Response) inbuilt.Control {
		response.SetHeader("Server", value)
		return inbuilt.Continue
	}
}
