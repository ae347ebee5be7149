package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/san-kum/swesim/internal/grid"
)

// Spectrum returns |c_k|/N for wavenumbers k = 0..N/2 of a periodic field.
func Spectrum[T grid.Float](f *grid.Field[T]) []float64 {
	n := f.Len()
	if n == 0 {
		return nil
	}

	data := make([]float64, n)
	for i, v := range f.Data() {
		data[i] = float64(v)
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, data)
	amp := make([]float64, len(coeff))
	for k, c := range coeff {
		amp[k] = cmplx.Abs(c) / float64(n)
	}
	return amp
}

// Dominant returns the non-zero wavenumber with the largest amplitude.
func Dominant(amp []float64) int {
	best := 0
	for k := 1; k < len(amp); k++ {
		if best == 0 || amp[k] > amp[best] {
			best = k
		}
	}
	return best
}
