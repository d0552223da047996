// Package uri implements percent-encoding in the flavours of ECMAScript's encodeURI and
// encodeURIComponent, and the application/x-www-form-urlencoded form encoding used for
// query strings.
package uri

import (
	"strings"

	"github.com/indigo-web/h2tp/http/status"
	"github.com/indigo-web/h2tp/internal/hexconv"
	"github.com/indigo-web/h2tp/kv"
)

type table = [256]bool

func newTable(chars string) (t table) {
	for c := byte('0'); c <= '9'; c++ {
		t[c] = true
	}

	for c := byte('a'); c <= 'z'; c++ {
		t[c] = true
		t[c-'a'+'A'] = true
	}

	for i := range len(chars) {
		t[chars[i]] = true
	}

	return t
}

var (
	// uriSafe are characters left as is by Encode.
	uriSafe = newTable(";,/?:@&=+$-_.!~*'()#")
	// componentSafe are characters left as is by EncodeComponent and EncodeForm.
	componentSafe = newTable("-_.!~*'()")
	// reserved escapes are not decoded by Decode, otherwise the meaning of the URI may change.
	reserved = func() (t table) {
		for _, c := range []byte(";/?:@&=+$,#") {
			t[c] = true
		}

		return t
	}()
)

// Encode escapes the string to be used as a complete URI. Characters having a special
// meaning in URIs are left as is.
func Encode(str string) string {
	return encode(str, &uriSafe, false)
}

// EncodeComponent escapes everything except alphanumerics and -_.!~*'(), so the result
// can be safely used as a single URI component.
func EncodeComponent(str string) string {
	return encode(str, &componentSafe, false)
}

// Decode reverts Encode. Escapes of reserved characters are kept intact.
func Decode(str string) (string, error) {
	return decode(str, &reserved, false)
}

// DecodeComponent reverts EncodeComponent, decoding every escape sequence.
func DecodeComponent(str string) (string, error) {
	return decode(str, nil, false)
}

// EncodeForm renders the storage as a query string. Spaces become pluses, pairs are
// joined with ampersands.
func EncodeForm(form *kv.Storage) string {
	var buff []byte
	form.Each(func(key, value string, last bool) {
		buff = appendEncoded(buff, key, &componentSafe, true)
		buff = append(buff, '=')
		buff = appendEncoded(buff, value, &componentSafe, true)
		if !last {
			buff = append(buff, '&')
		}
	})

	return string(buff)
}

// DecodeForm parses the query string into the storage. Empty pairs are skipped, a pair
// without a value results in an empty value.
func DecodeForm(raw string, into *kv.Storage) error {
	for len(raw) > 0 {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if len(pair) == 0 {
			continue
		}

		key, value, _ := strings.Cut(pair, "=")
		key, err := decode(key, nil, true)
		if err != nil {
			return err
		}

		value, err = decode(value, nil, true)
		if err != nil {
			return err
		}

		into.Add(key, value)
	}

	return nil
}

func encode(str string, safe *table, spaceAsPlus bool) string {
	for i := range len(str) {
		if !safe[str[i]] {
			return string(appendEncoded(make([]byte, 0, len(str)+len(str)/2), str, safe, spaceAsPlus))
		}
	}

	return str
}

func appendEncoded(dst []byte, str string, safe *table, spaceAsPlus bool) []byte {
	for i := range len(str) {
		switch c := str[i]; {
		case safe[c]:
			dst = append(dst, c)
		case c == ' ' && spaceAsPlus:
			dst = append(dst, '+')
		default:
			dst = append(dst, '%', hexconv.Upper[c>>4], hexconv.Upper[c&0xF])
		}
	}

	return dst
}

func decode(str string, keep *table, plusAsSpace bool) (string, error) {
	if strings.IndexByte(str, '%') == -1 && (!plusAsSpace || strings.IndexByte(str, '+') == -1) {
		return str, nil
	}

	buff := make([]byte, 0, len(str))

	for i := 0; i < len(str); i++ {
		switch c := str[i]; {
		case c == '%':
			if i+2 >= len(str) {
				return "", status.ErrURLDecoding
			}

			b, ok := hexconv.Decode(str[i+1], str[i+2])
			if !ok {
				return "", status.ErrURLDecoding
			}

			if keep != nil && keep[b] {
				buff = append(buff, str[i:i+3]...)
			} else {
				buff = append(buff, b)
			}

			i += 2
		case c == '+' && plusAsSpace:
			buff = append(buff, ' ')
		default:
			buff = append(buff, c)
		}
	}

	return string(buff), nil
}
