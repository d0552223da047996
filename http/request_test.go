package http

import (
	"testing"

	"github.com/indigo-web/h2tp/http/method"
	"github.com/indigo-web/h2tp/http/proto"
	"github.com/stretchr/testify/require"
)

func newRequest(m, target, version string, headers ...string) *Request {
	req := NewRequest(nil, nil)
	req.StartLine = [3]string{m, target, version}
	for i := 0; i < len(headers); i += 2 {
		req.Headers.Add(headers[i], headers[i+1])
	}

	return req
}

func TestRequest(t *testing.T) {
	t.Run("start-line accessors", func(t *testing.T) {
		req := newRequest("POST", "/api/users?limit=10", "HTTP/1.1")
		require.Equal(t, method.POST, req.Method())
		require.Equal(t, "POST", req.MethodString())
		require.Equal(t, "/api/users?limit=10", req.Target())
		require.Equal(t, proto.HTTP11, req.Protocol())
		require.Equal(t, "/api/users", req.Path())

		query, err := req.Query()
		require.NoError(t, err)
		require.Equal(t, "10", query.Value("limit"))
	})

	t.Run("unknown method", func(t *testing.T) {
		req := newRequest("PROPFIND", "/", "HTTP/1.1")
		require.Equal(t, method.Unknown, req.Method())
		require.Equal(t, "PROPFIND", req.MethodString())
	})

	t.Run("asterisk target", func(t *testing.T) {
		req := newRequest("OPTIONS", "*", "HTTP/1.1")
		_, err := req.URL()
		require.Error(t, err)
		require.Empty(t, req.Path())
	})

	t.Run("keep-alive", func(t *testing.T) {
		require.True(t, newRequest("GET", "/", "HTTP/1.1").KeepAlive())
		require.False(t, newRequest("GET", "/", "HTTP/1.1", "connection", "Close").KeepAlive())
		require.False(t, newRequest("GET", "/", "HTTP/1.1", "connection", "upgrade, close").KeepAlive())
		require.False(t, newRequest("GET", "/", "HTTP/1.0").KeepAlive())
		require.True(t, newRequest("GET", "/", "HTTP/1.0", "connection", "Keep-Alive").KeepAlive())
	})

	t.Run("json", func(t *testing.T) {
		req := newRequest("POST", "/", "HTTP/1.1")
		req.Body = append(req.Body, `{"name":"h2tp","stars":42}`...)

		var model struct {
			Name  string `json:"name"`
			Stars int    `json:"stars"`
		}
		require.NoError(t, req.JSON(&model))
		require.Equal(t, "h2tp", model.Name)
		require.Equal(t, 42, model.Stars)

		req.Body = append(req.Body[:0], `{"name":`...)
		require.Error(t, req.JSON(&model))
	})

	t.Run("cookies", func(t *testing.T) {
		req := newRequest("GET", "/", "HTTP/1.1",
			"cookie", "session=abc; theme=dark",
			"cookie", "lang=uk",
		)

		jar, err := req.Cookies()
		require.NoError(t, err)
		require.Equal(t, "abc", jar.Value("session"))
		require.Equal(t, "dark", jar.Value("theme"))
		require.Equal(t, "uk", jar.Value("lang"))

		req.Clear()
		req.Headers.Add("cookie", "only=one")
		jar, err = req.Cookies()
		require.NoError(t, err)
		require.Equal(t, 1, jar.Len())

		req.Headers.Add("cookie", "broken")
		_, err = req.Cookies()
		require.Error(t, err)
	})

	t.Run("clear", func(t *testing.T) {
		req := newRequest("GET", "/first?a=1", "HTTP/1.1", "host", "localhost")
		req.Body = append(req.Body, "body"...)
		req.Vars.Add("id", "1")
		req.Env.AllowedMethods = "GET"
		req.Env.Encryption = 0x0304
		require.Equal(t, "/first", req.Path())

		req.Clear()
		require.Empty(t, req.Target())
		require.True(t, req.Headers.Empty())
		require.Empty(t, req.Body)
		require.True(t, req.Vars.Empty())
		require.Empty(t, req.Env.AllowedMethods)
		require.Equal(t, uint16(0x0304), req.Env.Encryption, "encryption is a property of the connection")

		req.StartLine = [3]string{"GET", "/second", "HTTP/1.1"}
		require.Equal(t, "/second", req.Path())
	})
}
