package cookie

import (
	"errors"
	"strings"

	"github.com/indigo-web/h2tp/kv"
)

var ErrBadCookie = errors.New("cookie has a malformed syntax")

// Parse parses cookies, received from a user-agent, into the jar. These are basically
// key-value pairs, so the function isn't applicable for Set-Cookie values
func Parse(jar *kv.Storage, data string) error {
	for len(data) > 0 {
		var pair string
		pair, data, _ = strings.Cut(data, ";")
		pair = strings.TrimLeft(pair, " ")
		if len(pair) == 0 {
			// trailing semicolon
			continue
		}

		key, value, found := strings.Cut(pair, "=")
		if !found || len(key) == 0 {
			return ErrBadCookie
		}

		// values are allowed to be quoted
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}

		jar.Add(key, value)
	}

	return nil
}
