package http1

import (
	"bufio"
	"io"
	stdhttp "net/http"
	"strings"
	"testing"
	"time"

	"github.com/indigo-web/h2tp/config"
	"github.com/indigo-web/h2tp/http"
	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/kv"
	"github.com/indigo-web/h2tp/transport"
	"github.com/indigo-web/h2tp/transport/dummy"
	"github.com/stretchr/testify/require"
)

func getSerializer(cfg *config.Config) (*Serializer, *dummy.Conn) {
	conn := dummy.NewConn()
	client := transport.NewClient(conn, time.Second, make([]byte, 64))
	return NewSerializer(cfg, client), conn
}

func newRequest(method, version string) *http.Request {
	request := http.NewRequest(kv.New(), nil)
	request.StartLine = [3]string{method, "/", version}
	return request
}

func TestSerializer(t *testing.T) {
	t.Run("wire format", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		response := http.NewResponse().
			Code(status.Created).
			Header("X-Multi", "a", "b").
			String("Hello")

		require.NoError(t, s.Write(newRequest("POST", "HTTP/1.1"), response, false))
		want := "HTTP/1.1 201 Created\r\n" +
			"X-Multi: a\r\n" +
			"X-Multi: b\r\n" +
			"Content-Length: 5\r\n" +
			"\r\n" +
			"Hello"
		require.Equal(t, want, conn.Written())
	})

	t.Run("answers with the request's version", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.0"), http.NewResponse(), false))
		require.True(t, strings.HasPrefix(conn.Written(), "HTTP/1.0 200 OK\r\n"))
	})

	t.Run("falls back to HTTP/1.1", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		require.NoError(t, s.Write(newRequest("GET", ""), http.NewResponse(), false))
		require.True(t, strings.HasPrefix(conn.Written(), "HTTP/1.1 200 OK\r\n"))
	})

	t.Run("user content-length is replaced", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		response := http.NewResponse().SetHeader("Content-Length", "100").String("abc")
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.1"), response, false))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\nabc", conn.Written())
	})

	t.Run("connection close", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.1"), http.NewResponse(), true))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n", conn.Written())
	})

	t.Run("HTTP/1.0 keep-alive", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.0"), http.NewResponse(), false))
		require.Equal(t, "HTTP/1.0 200 OK\r\nContent-Length: 0\r\nConnection: keep-alive\r\n\r\n", conn.Written())

		s, conn = getSerializer(config.Default())
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.0"), http.NewResponse(), true))
		require.Equal(t, "HTTP/1.0 200 OK\r\nContent-Length: 0\r\nConnection: close\r\n\r\n", conn.Written())
	})

	t.Run("HEAD has no body", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		response := http.NewResponse().String("Hello")
		require.NoError(t, s.Write(newRequest("HEAD", "HTTP/1.1"), response, false))
		require.Equal(t, "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\n", conn.Written())
	})

	t.Run("default headers", func(t *testing.T) {
		cfg := config.Default()
		cfg.Headers.Default = map[string]string{
			"Server":       "h2tp",
			"Content-Type": "text/html",
		}

		s, conn := getSerializer(cfg)
		response := http.NewResponse().SetHeader("content-type", "application/json")
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.1"), response, false))
		want := "HTTP/1.1 200 OK\r\n" +
			"Server: h2tp\r\n" +
			"content-type: application/json\r\n" +
			"Content-Length: 0\r\n" +
			"\r\n"
		require.Equal(t, want, conn.Written())

		// the default header isn't excluded forever
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.1"), http.NewResponse(), false))
		require.Contains(t, conn.Written()[len(want):], "Content-Type: text/html\r\n")
	})

	t.Run("readable by net/http", func(t *testing.T) {
		s, conn := getSerializer(config.Default())
		response := http.NewResponse().
			Code(status.NotFound).
			Header("X-Hello", "world").
			String("no such page")

		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.1"), response, false))

		stdreq, err := stdhttp.NewRequest(stdhttp.MethodGet, "/", nil)
		require.NoError(t, err)
		resp, err := stdhttp.ReadResponse(bufio.NewReader(strings.NewReader(conn.Written())), stdreq)
		require.NoError(t, err)
		require.Equal(t, 404, resp.StatusCode)
		require.Equal(t, "world", resp.Header.Get("X-Hello"))
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.Equal(t, "no such page", string(body))
	})

	t.Run("buffer shrinks back", func(t *testing.T) {
		cfg := config.Default()
		s, _ := getSerializer(cfg)
		response := http.NewResponse().String(strings.Repeat("a", cfg.NET.WriteBufferSize.Maximal*2))
		require.NoError(t, s.Write(newRequest("GET", "HTTP/1.1"), response, false))
		require.LessOrEqual(t, cap(s.buff), cfg.NET.WriteBufferSize.Maximal)
	})
}

func BenchmarkSerializer(b *testing.B) {
	cfg := config.Default()
	conn := dummy.NewConn().Nop()
	s := NewSerializer(cfg, transport.NewClient(conn, time.Second, make([]byte, 64)))
	request := newRequest("GET", "HTTP/1.1")
	response := http.NewResponse().
		Header("Server", "h2tp").
		Header("X-Frame-Options", "deny").
		String(strings.Repeat("a", 1024))

	b.ReportAllocs()
	b.ResetTimer()

	for range b.N {
		if err := s.Write(request, response, false); err != nil {
			b.Fatal(err)
		}
	}
}
