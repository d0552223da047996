package domain

import (
	"net"
	"strings"
)

// Normalize trims the www. prefix and default ports off the host. Non-default ports must
// always be presented, so they're kept.
func Normalize(host string) string {
	host = strings.TrimPrefix(host, "www.")

	if _, port, err := net.SplitHostPort(host); err == nil {
		switch port {
		case "", "80", "443":
			host = host[:strings.LastIndexByte(host, ':')]
		}
	}

	return host
}
