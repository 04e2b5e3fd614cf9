// Package spectrum computes a power spectrum of one packet's samples for the
// monitor display.
package spectrum

import (
	"math"

	"github.com/jrwynneiii/iqbridge/packet"
	"github.com/racerxdl/segdsp/tools"
	"gonum.org/v1/gonum/dsp/fourier"
)

// Floor is the dB value reported for empty bins, so plots stay finite.
const Floor = -200.0

// Complex converts I/Q words, read as signed 32-bit, to complex values
// scaled to [-1, 1).
func Complex(samples []packet.Sample) []complex128 {
	out := make([]complex128, len(samples))
	for k, s := range samples {
		out[k] = complex(float64(int32(s.I))/(1<<31), float64(int32(s.Q))/(1<<31))
	}
	return out
}

// Compute returns power in dB per bin, shifted so DC sits in the middle.
func Compute(samples []packet.Sample) []float64 {
	if len(samples) == 0 {
		return nil
	}
	input := Complex(samples)
	fft := fourier.NewCmplxFFT(len(input))
	coeff := fft.Coefficients(nil, input)

	n := float64(len(input))
	out := make([]float64, len(coeff))
	for i := range coeff {
		c := coeff[fft.ShiftIdx(i)] / complex(n, 0)
		v := float64(tools.ComplexAbsSquared(complex64(c)))
		if v > 0 {
			out[i] = 10.0 * math.Log10(v)
		} else {
			out[i] = Floor
		}
	}
	return out
}

// Peak returns the index of the strongest bin of a shifted spectrum and its
// offset from DC in Hz at the given sample rate.
func Peak(bins []float64, sampleRate float64) (int, float64) {
	if len(bins) == 0 {
		return 0, 0
	}
	best := 0
	for i, v := range bins {
		if v > bins[best] {
			best = i
		}
	}
	half := len(bins) / 2
	return best, float64(best-half) * sampleRate / float64(len(bins))
}
