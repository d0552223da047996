package middleware

import (
	"log"

	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/router/inbuilt"
)

type Logger interface {
	Printf(fmt string, v ...any)
}

// LogRequests logs the method and the target of every request. It must be added as a
// before-middleware in order to see requests ending up as routing errors too.
func LogRequests(loggers ...Logger) inbuilt.Middleware {
	if len(loggers) == 0 {
		loggers = append(loggers, log.Default())
	}

	return func(request *http.Request, _ *http.Response) inbuilt.Control {
		for _, logger := range loggers {
			logger.Printf("%s %s", request.MethodString(), request.Target())
		}

		return inbuilt.Continue
	}
}
