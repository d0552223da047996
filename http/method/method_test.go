package method

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethod(t *testing.T) {
	for _, method := range List {
		assert.Equal(t, method, Parse(method.String()))
	}

	assert.Equal(t, Unknown, Parse("get"))
	assert.Equal(t, Unknown, Parse("PROPFIND"))
	assert.Equal(t, "UNKNOWN", Method(200).String())
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "GET, HEAD, POST", Join(GET, HEAD, POST))
	assert.Empty(t, Join())
}

func BenchmarkParse(b *testing.B) {
	var parsed Method

	for _, m := range List {
		b.Run(m.String(), func(b *testing.B) {
			str := m.String()
			b.SetBytes(int64(len(str)))
			b.ResetTimer()

			for range b.N {
				parsed = Parse(str)
			}
		})
	}

	_ = parsed
}
