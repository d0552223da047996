package status

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringCode(t *testing.T) {
	for _, code := range KnownCodes {
		require.Equal(t, strconv.Itoa(int(code)), StringCode(code))
		require.NotEqual(t, Status("Unknown Status Code"), Text(code), code)
	}

	require.Equal(t, "599", StringCode(599))
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, BadRequest, CodeOf(ErrBadChunk))
	require.Equal(t, RequestHeaderFieldsTooLarge, CodeOf(fmt.Errorf("parse: %w", ErrTooManyHeaders)))
	require.Equal(t, InternalServerError, CodeOf(errors.New("whatever")))
}

func BenchmarkStringCode(b *testing.B) {
	code := KnownCodes[rand.IntN(len(KnownCodes))]
	b.ResetTimer()

	for range b.N {
		_ = StringCode(code)
	}
}
