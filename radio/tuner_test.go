package radio

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

const refClock = 125e6

func TestPincFromHz(t *testing.T) {
	var tests = []struct {
		hz   float64
		want uint32
	}{
		{0, 0},
		{-1, 0},
		{-1e9, 0},
		{math.NaN(), 0},
		{refClock / 2, 1 << 31},
		{refClock, 1 << 31},
		{math.Inf(1), 1 << 31},
		{1e6, 34359738},          // 1e6 * 2^32 / 125e6 = 34359738.368
		{10e6, 343597384},        // 343597383.68
		{0.01, 0},                // 0.34
		{0.07275957614183426, 3}, // exactly 2.5, half up
		{2.924934960901737, 101}, // exactly 100.5
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PincFromHz(tt.hz, refClock), "PincFromHz(%v)", tt.hz)
	}
}

func TestPincFromHzMonotonic(t *testing.T) {
	prev := PincFromHz(0, refClock)
	for hz := 0.0; hz <= refClock/2; hz += 12345.678 {
		got := PincFromHz(hz, refClock)
		if got < prev {
			t.Fatalf("PincFromHz(%v)=%d below previous %d", hz, got, prev)
		}
		prev = got
	}
}

func TestHzFromPinc(t *testing.T) {
	for _, hz := range []float64{0, 1, 1000, 1e6, 12.5e6, 62.5e6} {
		pinc := PincFromHz(hz, refClock)
		// One LSB is clock/2^32, about 0.03 Hz.
		assert.InDelta(t, hz, HzFromPinc(pinc, refClock), refClock/(1<<32), "hz=%v", hz)
	}
}
