package address

import (
	"net"
	"strings"
)

const DefaultAddr = "0.0.0.0"

// Normalize completes an address consisting of a port only with DefaultAddr.
func Normalize(addr string) string {
	if len(StripPort(addr)) == 0 {
		// only port is presented
		return DefaultAddr + addr
	}

	return addr
}

func IsLocalhost(addr string) bool {
	host := StripPort(addr)
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func IsIP(addr string) bool {
	return net.ParseIP(StripPort(addr)) != nil
}

// StripPort returns the host part of the address. IPv6 hosts are returned without brackets.
func StripPort(addr string) string {
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}

	return strings.Trim(addr, "[]")
}
