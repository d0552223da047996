package transport

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"log"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/crypto/acme/autocert"
)

var (
	ErrBadCertificate = errors.New("one or more passed certificates are empty")
	ErrNoCertificates = errors.New("no certificates were passed")
)

// Security upgrades a freshly accepted connection. A failed handshake makes the server
// drop the connection silently.
type Security interface {
	Handshake(ctx context.Context, conn net.Conn) (net.Conn, error)
}

type tlsSecurity struct {
	cfg *tls.Config
}

// NewTLS returns a provider doing the TLS handshake with the passed configuration.
func NewTLS(cfg *tls.Config) Security {
	return tlsSecurity{cfg: cfg}
}

func (t tlsSecurity) Handshake(ctx context.Context, conn net.Conn) (net.Conn, error) {
	tlsConn := tls.Server(conn, t.cfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		return nil, err
	}

	return tlsConn, nil
}

// TLS returns a provider serving the certificates.
func TLS(certs ...tls.Certificate) (Security, error) {
	// simple anti-idiot checks in order to avoid the most obvious mistakes
	if len(certs) == 0 {
		return nil, ErrNoCertificates
	}

	for _, c := range certs {
		if c.Certificate == nil {
			return nil, ErrBadCertificate
		}
	}

	return NewTLS(&tls.Config{Certificates: certs}), nil
}

// Cert loads a certificate from PEM-encoded files.
func Cert(certFile, keyFile string) (tls.Certificate, error) {
	return tls.LoadX509KeyPair(certFile, keyFile)
}

// AutoTLS obtains certificates from Let's Encrypt for the domains on the fly. Certificates
// are cached in the user's cache directory, if it's possible to create one.
func AutoTLS(domains ...string) Security {
	m := &autocert.Manager{
		Prompt: autocert.AcceptTOS,
	}

	if len(domains) > 0 {
		m.HostPolicy = autocert.HostWhitelist(domains...)
	}

	cache := cacheDir()
	if err := os.MkdirAll(cache, 0700); err != nil {
		log.Printf("WARNING: auto HTTPS: not using a cache: %s", err)
	} else {
		m.Cache = autocert.DirCache(cache)
	}

	return NewTLS(m.TLSConfig())
}

// SelfSigned generates an in-memory certificate for localhost. Browsers won't trust it,
// so it's meant for the development only.
func SelfSigned() (Security, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	notBefore := time.Now()
	template := x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Localhost"}},
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(365 * 24 * time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &priv.PublicKey, priv)
	if err != nil {
		return nil, err
	}

	return TLS(tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  priv,
	})
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	if h := os.Getenv("HOME"); h != "" {
		return h
	}
	return "/"
}

func cacheDir() string {
	const base = "golang-autocert"
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches", base)
	case "windows":
		for _, ev := range []string{"APPDATA", "CSIDL_APPDATA", "TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return filepath.Join(v, base)
			}
		}
		// Worst case:
		return filepath.Join(homeDir(), base)
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, base)
	}
	return filepath.Join(homeDir(), ".cache", base)
}
