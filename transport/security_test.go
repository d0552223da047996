package transport

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTLS(t *testing.T) {
	t.Run("no certificates", func(t *testing.T) {
		_, err := TLS()
		require.ErrorIs(t, err, ErrNoCertificates)

		_, err = TLS(tls.Certificate{})
		require.ErrorIs(t, err, ErrBadCertificate)
	})

	t.Run("missing files", func(t *testing.T) {
		_, err := Cert("/nonexistent.crt", "/nonexistent.key")
		require.Error(t, err)
	})

	t.Run("self-signed handshake", func(t *testing.T) {
		security, err := SelfSigned()
		require.NoError(t, err)

		server, client := loopback(t)
		defer client.Close()
		defer server.Close()

		go func() {
			tlsClient := tls.Client(client, &tls.Config{InsecureSkipVerify: true})
			if tlsClient.Handshake() == nil {
				_, _ = tlsClient.Write([]byte("ping"))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		conn, err := security.Handshake(ctx, server)
		require.NoError(t, err)
		require.IsType(t, new(tls.Conn), conn)

		buff := make([]byte, 4)
		n, err := io.ReadFull(conn, buff)
		require.NoError(t, err)
		require.Equal(t, "ping", string(buff[:n]))
	})

	t.Run("handshake failure", func(t *testing.T) {
		security, err := SelfSigned()
		require.NoError(t, err)

		server, client := loopback(t)
		defer server.Close()
		go func() {
			_, _ = client.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
			_ = client.Close()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_, err = security.Handshake(ctx, server)
		require.Error(t, err)
	})
}

func TestAutoTLS(t *testing.T) {
	cache := t.TempDir()
	t.Setenv("HOME", cache)
	t.Setenv("XDG_CACHE_HOME", cache)

	security := AutoTLS("example.com", "www.example.com")
	provider, ok := security.(tlsSecurity)
	require.True(t, ok)
	require.NotNil(t, provider.cfg)
	require.NotNil(t, provider.cfg.GetCertificate)
	require.Contains(t, provider.cfg.NextProtos, "acme-tls/1")

	t.Run("foreign domain", func(t *testing.T) {
		_, err := provider.cfg.GetCertificate(&tls.ClientHelloInfo{ServerName: "example.org"})
		require.Error(t, err)
	})
}

func TestTCP(t *testing.T) {
	tcp, err := Bind("127.0.0.1:0")
	require.NoError(t, err)

	conns := make(chan net.Conn)
	stop := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- tcp.Accept(conns, stop)
	}()

	client, err := net.Dial("tcp", tcp.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	select {
	case conn := <-conns:
		require.NoError(t, conn.Close())
	case <-time.After(5 * time.Second):
		require.Fail(t, "no connection accepted")
	}

	close(stop)
	require.NoError(t, tcp.Close())
	require.NoError(t, <-done)
}

func loopback(t *testing.T) (server, client net.Conn) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	client, err = net.Dial("tcp", l.Addr().String())
	require.NoError(t, err)

	server, err = l.Accept()
	require.NoError(t, err)

	return server, client
}
