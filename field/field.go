// Package field generates spatially correlated risk surfaces for the grid world.
package field

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
	"gonum.org/v1/gonum/dsp/fourier"
)

// ErrInvalidParameter reports bad construction arguments. Fatal at setup.
var ErrInvalidParameter = errors.New("invalid parameter")

// RiskField is a grid of predation-risk values in [0,1].
// Values are fixed after generation.
type RiskField struct {
	width, height int
	values        []float64
}

// Generate produces a risk field by spectral synthesis: seeded complex
// Gaussian white noise in frequency space is shaped by the square root of a
// Gaussian covariance power spectrum and transformed back with an inverse
// 2-D FFT. The result is min-max normalized to [0,1].
//
// correlationLength is in cells; larger values give smoother fields.
// Identical inputs yield bit-for-bit identical output.
func Generate(width, height int, correlationLength float64, seed int64) (*RiskField, error) {
	if err := validate(width, height, correlationLength); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(seed))

	// Synthesize the spectrum: white noise shaped by amp(k) = exp(-(k*L)^2/4),
	// the square root of the Gaussian covariance power spectrum.
	spectrum := make([]complex128, width*height)
	for fy := 0; fy < height; fy++ {
		ky := freqOf(fy, height)
		for fx := 0; fx < width; fx++ {
			kx := freqOf(fx, width)
			k := 2 * math.Pi * math.Hypot(kx, ky)
			amp := math.Exp(-0.25 * (k * correlationLength) * (k * correlationLength))
			n := complex(rng.NormFloat64(), rng.NormFloat64())
			spectrum[fy*width+fx] = n * complex(amp, 0)
		}
	}

	// Inverse 2-D FFT: rows then columns. gonum's Sequence is unnormalized,
	// so divide by width*height afterwards.
	rowFFT := fourier.NewCmplxFFT(width)
	row := make([]complex128, width)
	for fy := 0; fy < height; fy++ {
		copy(row, spectrum[fy*width:(fy+1)*width])
		rowFFT.Sequence(spectrum[fy*width:(fy+1)*width], row)
	}

	colFFT := fourier.NewCmplxFFT(height)
	col := make([]complex128, height)
	out := make([]complex128, height)
	for fx := 0; fx < width; fx++ {
		for fy := 0; fy < height; fy++ {
			col[fy] = spectrum[fy*width+fx]
		}
		colFFT.Sequence(out, col)
		for fy := 0; fy < height; fy++ {
			spectrum[fy*width+fx] = out[fy]
		}
	}

	values := make([]float64, width*height)
	scale := 1 / float64(width*height)
	for i, c := range spectrum {
		values[i] = real(c) * scale
	}
	normalize(values)

	return &RiskField{width: width, height: height, values: values}, nil
}

// GenerateSimplex produces a risk field from seeded simplex noise sampled at
// a frequency of 1/correlationLength. Same contract as Generate; an
// alternative generator for callers that want cheaper synthesis on large
// grids.
func GenerateSimplex(width, height int, correlationLength float64, seed int64) (*RiskField, error) {
	if err := validate(width, height, correlationLength); err != nil {
		return nil, err
	}

	noise := opensimplex.NewNormalized(seed)
	values := make([]float64, width*height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			values[row*width+col] = noise.Eval2(
				float64(col)/correlationLength,
				float64(row)/correlationLength,
			)
		}
	}
	normalize(values)

	return &RiskField{width: width, height: height, values: values}, nil
}

// FromValues wraps an explicit row-major grid of risk values. Values must
// already lie in [0,1]; no normalization is applied.
func FromValues(width, height int, values []float64) (*RiskField, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: field dimensions must be positive, got %dx%d",
			ErrInvalidParameter, width, height)
	}
	if len(values) != width*height {
		return nil, fmt.Errorf("%w: got %d values for %dx%d grid",
			ErrInvalidParameter, len(values), width, height)
	}
	for i, v := range values {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("%w: risk value %f at index %d outside [0,1]",
				ErrInvalidParameter, v, i)
		}
	}
	return &RiskField{width: width, height: height, values: values}, nil
}

func validate(width, height int, correlationLength float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: field dimensions must be positive, got %dx%d",
			ErrInvalidParameter, width, height)
	}
	if correlationLength <= 0 {
		return fmt.Errorf("%w: correlation length must be positive, got %f",
			ErrInvalidParameter, correlationLength)
	}
	return nil
}

// freqOf maps a DFT bin index to a signed normalized frequency.
func freqOf(i, n int) float64 {
	if i > n/2 {
		i -= n
	}
	return float64(i) / float64(n)
}

// normalize rescales values to span [0,1]. A flat field maps to 0.5.
func normalize(values []float64) {
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if max == min {
		for i := range values {
			values[i] = 0.5
		}
		return
	}
	span := max - min
	for i := range values {
		values[i] = (values[i] - min) / span
	}
}

// Width returns the field width in cells.
func (f *RiskField) Width() int { return f.width }

// Height returns the field height in cells.
func (f *RiskField) Height() int { return f.height }

// At returns the risk value at (row, col).
func (f *RiskField) At(row, col int) float64 {
	return f.values[row*f.width+col]
}

// Values returns the underlying grid in row-major order for visualization.
// Callers must not mutate it.
func (f *RiskField) Values() []float64 {
	return f.values
}
