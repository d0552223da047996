// Package url parses URLs of the form
//
//	[scheme://][user[:pass]@]host[:port]/path[?query][#fragment]
//
// without copying: every component of a parsed URL is a substring of the input. Components
// may be overridden via Set, which stores owned values on top of the parsed ones.
package url

import (
	"errors"
	"strings"

	"github.com/indigo-web/h2tp/http/uri"
	"github.com/indigo-web/h2tp/kv"
)

var (
	ErrIPv6EndingMissing = errors.New("IPv6 ending character missing")
	ErrPathMissing       = errors.New("path missing")
	ErrBadPort           = errors.New("port must consist of digits only")
	ErrBadHost           = errors.New("unexpected characters after IPv6 host")
)

type component uint8

const (
	cScheme component = iota
	cUsername
	cPassword
	cHost
	cPort
	cPath
	cQuery
	cFragment
	numComponents
)

// span is a range of the raw string. A zero span is an empty component.
type span struct {
	start, end int
}

type URL struct {
	raw     string
	spans   [numComponents]span
	overlay *Builder
	// query caches the decoded raw query. It's never authoritative: once the overlay's
	// query is touched, the overlay wins.
	query *kv.Storage
}

// Parse splits the raw URL into components. No copies of raw are made.
func Parse(raw string) (u URL, err error) {
	u.raw = raw
	pos := 0

	if i := strings.Index(raw, "://"); i != -1 && strings.IndexByte(raw[:i], '/') == -1 {
		u.spans[cScheme] = span{0, i}
		pos = i + len("://")
	}

	authEnd := len(raw)
	if slash := strings.IndexByte(raw[pos:], '/'); slash != -1 {
		authEnd = pos + slash
	}

	if at := strings.IndexByte(raw[pos:authEnd], '@'); at != -1 {
		userinfo := span{pos, pos + at}
		if colon := strings.IndexByte(raw[userinfo.start:userinfo.end], ':'); colon != -1 {
			u.spans[cUsername] = span{userinfo.start, userinfo.start + colon}
			u.spans[cPassword] = span{userinfo.start + colon + 1, userinfo.end}
		} else {
			u.spans[cUsername] = userinfo
		}

		pos += at + 1
	}

	if err = u.parseHost(pos, authEnd); err != nil {
		return u, err
	}

	if authEnd == len(raw) {
		return u, ErrPathMissing
	}

	tail := raw[authEnd:]
	pathEnd := strings.IndexAny(tail, "?#")
	if pathEnd == -1 {
		u.spans[cPath] = span{authEnd, len(raw)}
		return u, nil
	}

	u.spans[cPath] = span{authEnd, authEnd + pathEnd}
	tail = tail[pathEnd:]
	offset := authEnd + pathEnd

	if tail[0] == '?' {
		queryEnd := strings.IndexByte(tail, '#')
		if queryEnd == -1 {
			u.spans[cQuery] = span{offset + 1, len(raw)}
			return u, nil
		}

		u.spans[cQuery] = span{offset + 1, offset + queryEnd}
		offset += queryEnd
	}

	u.spans[cFragment] = span{offset + 1, len(raw)}
	return u, nil
}

func (u *URL) parseHost(start, end int) error {
	hostport := u.raw[start:end]
	if len(hostport) == 0 {
		return nil
	}

	if hostport[0] == '[' {
		closing := strings.IndexByte(hostport, ']')
		if closing == -1 {
			return ErrIPv6EndingMissing
		}

		u.spans[cHost] = span{start + 1, start + closing}

		switch rest := hostport[closing+1:]; {
		case len(rest) == 0:
			return nil
		case rest[0] != ':':
			return ErrBadHost
		}

		return u.parsePort(start+closing+2, end)
	}

	colon := strings.LastIndexByte(hostport, ':')
	if colon == -1 {
		u.spans[cHost] = span{start, end}
		return nil
	}

	u.spans[cHost] = span{start, start + colon}
	return u.parsePort(start+colon+1, end)
}

func (u *URL) parsePort(start, end int) error {
	for _, c := range []byte(u.raw[start:end]) {
		if c < '0' || c > '9' {
			return ErrBadPort
		}
	}

	u.spans[cPort] = span{start, end}
	return nil
}

func (u *URL) get(c component) string {
	if u.overlay != nil {
		if value := u.overlay.parts[c]; len(value) > 0 {
			return value
		}
	}

	s := u.spans[c]
	return u.raw[s.start:s.end]
}

func (u *URL) Scheme() string   { return u.get(cScheme) }
func (u *URL) Username() string { return u.get(cUsername) }
func (u *URL) Password() string { return u.get(cPassword) }
func (u *URL) Host() string     { return u.get(cHost) }
func (u *URL) Port() string     { return u.get(cPort) }
func (u *URL) Path() string     { return u.get(cPath) }
func (u *URL) Fragment() string { return u.get(cFragment) }

// RawQuery returns the query string without the question mark. If the query was modified
// via the overlay, it's re-encoded from there.
func (u *URL) RawQuery() string {
	if u.overlay != nil && u.overlay.query != nil {
		return uri.EncodeForm(u.overlay.query)
	}

	return u.get(cQuery)
}

// Query returns decoded query parameters. The raw query is decoded on the first call only.
func (u *URL) Query() (*kv.Storage, error) {
	if u.overlay != nil && u.overlay.query != nil {
		return u.overlay.query, nil
	}

	if u.query != nil {
		return u.query, nil
	}

	query := kv.New()
	if err := uri.DecodeForm(u.get(cQuery), query); err != nil {
		return nil, err
	}

	u.query = query
	return query, nil
}

// Set returns the overlay. Values set there take precedence over parsed ones.
//
// The overlay is allocated on the first call and bound to u. Copies of the URL made after
// that share it, so setting a value through one of them shows up in all of them. Copy the
// URL before calling Set in order to get independent overlays.
func (u *URL) Set() *Builder {
	if u.overlay == nil {
		u.overlay = &Builder{url: u}
	}

	return u.overlay
}

// String renders the URL back. The result equals the parsed input unless the overlay was
// modified.
func (u *URL) String() string {
	var b strings.Builder

	if scheme := u.Scheme(); len(scheme) > 0 {
		b.WriteString(scheme)
		b.WriteString("://")
	}

	if user := u.Username(); len(user) > 0 {
		b.WriteString(user)
		if password := u.Password(); len(password) > 0 {
			b.WriteByte(':')
			b.WriteString(password)
		}

		b.WriteByte('@')
	}

	if host := u.Host(); strings.IndexByte(host, ':') != -1 {
		b.WriteByte('[')
		b.WriteString(host)
		b.WriteByte(']')
	} else {
		b.WriteString(host)
	}

	if port := u.Port(); len(port) > 0 {
		b.WriteByte(':')
		b.WriteString(port)
	}

	b.WriteString(u.Path())

	if query := u.RawQuery(); len(query) > 0 {
		b.WriteByte('?')
		b.WriteString(query)
	}

	if fragment := u.Fragment(); len(fragment) > 0 {
		b.WriteByte('#')
		b.WriteString(fragment)
	}

	return b.String()
}
