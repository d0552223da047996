package middleware

import (
	"strings"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/internal/address"
	"github.com/indigo-web/h2tp/router/inbuilt"
)

type HTTPSOnlyParams struct {
	// RedirectTo defines the host, where the user will be redirected.
	// If empty, value from Host header will be used
	RedirectTo string
	// Port is added to the host value.
	// If empty, implicitly default 443 port will be used
	Port string
}

// HTTPSOnly redirects all plain http requests to https, keeping the request target. In case
// no Host header is provided, 400 Bad Request is returned without calling the actual handler.
func HTTPSOnly(optionalParams ...HTTPSOnlyParams) inbuilt.Middleware {
	params := optional(optionalParams, HTTPSOnlyParams{})

	return func(request *http.Request, response *http.Response) inbuilt.Control {
		if request.Env.Encryption != 0 {
			return inbuilt.Continue
		}

		host := params.RedirectTo
		if len(host) == 0 {
			host = address.StripPort(request.Headers.Value("host"))
			if len(host) == 0 {
				response.
					Code(status.BadRequest).
					String("no Host header")
				return inbuilt.Return
			}

			if strings.IndexByte(host, ':') != -1 {
				// IPv6
				host = "[" + host + "]"
			}
		}

		if len(params.Port) > 0 {
			host += ":" + params.Port
		}

		response.
			Code(status.MovedPermanently).
			Header("Location", "https://"+host+request.Target())

		return inbuilt.Return
	}
}

func optional[T any](custom []T, default_ T) T {
	if len(custom) == 0 {
		return default_
	}

	return custom[0]
}
