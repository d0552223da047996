package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTime(t *testing.T) {
	const (
		threshold = 200 * time.Millisecond
		// use 1.5*Resolution in order to avoid test failures because of the Resolution+1ms error,
		// which happens rarely, but better to not happen at all
		resolution = Resolution + Resolution/2
	)

	for range 2 * time.Second / threshold {
		now := Now()
		if time.Since(now) > resolution {
			require.Fail(t, "the timer is too slow")
		}

		time.Sleep(threshold)
	}
}

func TestDeadline(t *testing.T) {
	deadline := Deadline(time.Minute)
	require.WithinDuration(t, time.Now().Add(time.Minute), deadline, 2*Resolution)
}

func BenchmarkNow(b *testing.B) {
	b.Run("time.Now()", func(b *testing.B) {
		for range b.N {
			_ = time.Now().Add(5 * time.Second)
		}
	})

	b.Run("timer.Now()", func(b *testing.B) {
		for range b.N {
			_ = Now().Add(5 * time.Second)
		}
	})
}
