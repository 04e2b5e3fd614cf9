package radio

import "math"

// PincFromHz converts a frequency to the phase increment of a 32-bit
// accumulator NCO clocked at clockHz. Input is clamped to [0, clockHz/2] and
// rounded half up.
func PincFromHz(hz, clockHz float64) uint32 {
	nyquist := clockHz / 2
	if hz < 0 || math.IsNaN(hz) {
		hz = 0
	}
	if hz > nyquist {
		hz = nyquist
	}
	scale := float64(uint64(1)<<32) / clockHz
	// The explicit conversion stops the multiply-add being fused.
	return uint32(math.Floor(float64(hz*scale) + 0.5))
}

// HzFromPinc is the inverse of PincFromHz, up to rounding.
func HzFromPinc(pinc uint32, clockHz float64) float64 {
	return float64(pinc) * clockHz / float64(uint64(1)<<32)
}
