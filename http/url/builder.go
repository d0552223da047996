package url

import "github.com/indigo-web/h2tp/kv"

// Builder holds owned values shadowing the parsed components of a URL. Empty values don't
// shadow anything.
type Builder struct {
	url   *URL
	parts [numComponents]string
	// query, once non-nil, is the source of truth for the query string.
	query *kv.Storage
}

func (b *Builder) Scheme(scheme string) *Builder     { return b.set(cScheme, scheme) }
func (b *Builder) Username(username string) *Builder { return b.set(cUsername, username) }
func (b *Builder) Password(password string) *Builder { return b.set(cPassword, password) }
func (b *Builder) Host(host string) *Builder         { return b.set(cHost, host) }
func (b *Builder) Port(port string) *Builder         { return b.set(cPort, port) }
func (b *Builder) Path(path string) *Builder         { return b.set(cPath, path) }
func (b *Builder) Fragment(fragment string) *Builder { return b.set(cFragment, fragment) }

// RawQuery replaces the query string. Modifications made via Query are discarded.
func (b *Builder) RawQuery(query string) *Builder {
	b.query = nil
	b.url.query = nil
	return b.set(cQuery, query)
}

// Query returns a mutable copy of the current query parameters. From now on the URL renders
// its query string from this storage. Malformed raw queries result in an empty storage.
func (b *Builder) Query() *kv.Storage {
	if b.query == nil {
		if current, err := b.url.Query(); err == nil {
			b.query = current.Clone()
		} else {
			b.query = kv.New()
		}
	}

	return b.query
}

// Reset drops all the overridden values.
func (b *Builder) Reset() *Builder {
	b.parts = [numComponents]string{}
	b.query = nil
	b.url.query = nil
	return b
}

func (b *Builder) set(c component, value string) *Builder {
	b.parts[c] = value
	return b
}
