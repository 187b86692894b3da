package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of the non-negative frequency
// coefficients of data, n/2+1 values for n samples.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}
	fft := fourier.NewFFT(len(data))
	coeffs := fft.Coefficients(nil, data)

	ps := make([]float64, len(coeffs))
	for i, c := range coeffs {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// Spectrum returns the power spectrum of a signal sampled every dt together
// with the frequency (cycles per unit time) of each bin. The mean is removed first.
func Spectrum(data []float64, dt float64) (freqs, power []float64) {
	if len(data) == 0 || dt <= 0 {
		return nil, nil
	}
	centered := make([]float64, len(data))
	copy(centered, data)
	floats.AddConst(-stat.Mean(centered, nil), centered)

	fft := fourier.NewFFT(len(centered))
	coeffs := fft.Coefficients(nil, centered)

	freqs = make([]float64, len(coeffs))
	power = make([]float64, len(coeffs))
	for i, c := range coeffs {
		freqs[i] = fft.Freq(i) / dt
		power[i] = cmplx.Abs(c)
	}
	return freqs, power
}

// DominantFrequency returns the frequency of the strongest non-zero bin.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("analysis: need at least 4 samples, got %d", len(data))
	}
	if !(dt > 0) {
		return 0, fmt.Errorf("analysis: sample spacing must be positive, got %g", dt)
	}
	freqs, power := Spectrum(data, dt)
	idx := floats.MaxIdx(power[1:]) + 1
	if power[idx] == 0 {
		return 0, fmt.Errorf("analysis: signal is constant")
	}
	return freqs[idx], nil
}
