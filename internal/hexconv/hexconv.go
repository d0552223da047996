package hexconv

// Halfbyte maps a hex digit character onto its value. Non-hex characters are mapped
// onto 0xFF.
var Halfbyte = func() (table [256]byte) {
	for i := range table {
		table[i] = 0xFF
	}

	for c := byte('0'); c <= '9'; c++ {
		table[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		table[c] = c - 'a' + 10
		table[c-'a'+'A'] = c - 'a' + 10
	}

	return table
}()

// Upper contains uppercase hex digits, as they are used in percent-encoding.
const Upper = "0123456789ABCDEF"

// Decode decodes a pair of hex digits into a byte. ok is false if any of them isn't a
// valid hex digit.
func Decode(hi, lo byte) (b byte, ok bool) {
	h, l := Halfbyte[hi], Halfbyte[lo]
	if h == 0xFF || l == 0xFF {
		return 0, false
	}

	return h<<4 | l, true
}
