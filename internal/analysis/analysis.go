// Package analysis provides offline measurement helpers for rendered audio:
// level metering and magnitude spectra. Nothing here runs on the audio
// thread; tools and tests use it to inspect what the engine produced.
package analysis

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// Peak returns the largest absolute sample value in buf.
func Peak(buf []float32) float64 {
	var peak float64
	for _, s := range buf {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

// RMS returns the root-mean-square level of buf, 0 for an empty buffer.
func RMS(buf []float32) float64 {
	if len(buf) == 0 {
		return 0
	}
	var sum float64
	for _, s := range buf {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(buf)))
}

// MonoMix folds an interleaved stereo buffer to a mono float64 signal,
// averaging the channel pair per frame.
func MonoMix(interleaved []float32) []float64 {
	out := make([]float64, len(interleaved)/2)
	for i := range out {
		out[i] = (float64(interleaved[i*2]) + float64(interleaved[i*2+1])) * 0.5
	}
	return out
}

// Spectrum computes Hann-windowed magnitude spectra of mono signals. The FFT
// plan and scratch buffers are allocated once, so repeated Analyze calls on
// the same instance reuse them.
type Spectrum struct {
	plan   *algofft.Plan[complex128]
	size   int
	window []float64

	in, out []complex128
	re, im  []float64
}

// NewSpectrum builds an analyzer for the given FFT size (power of two).
func NewSpectrum(fftSize int) (*Spectrum, error) {
	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectrum fft plan: %w", err)
	}
	s := &Spectrum{
		plan:   plan,
		size:   fftSize,
		window: make([]float64, fftSize),
		in:     make([]complex128, fftSize),
		out:    make([]complex128, fftSize),
		re:     make([]float64, fftSize/2+1),
		im:     make([]float64, fftSize/2+1),
	}
	for i := range s.window {
		s.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize)))
	}
	return s, nil
}

// Size returns the FFT size.
func (s *Spectrum) Size() int { return s.size }

// BinFrequency maps a bin index to its center frequency in Hz.
func (s *Spectrum) BinFrequency(bin int, sampleRate float64) float64 {
	return float64(bin) * sampleRate / float64(s.size)
}

// Analyze returns the magnitude spectrum of the first Size samples of mono,
// one value per bin from DC to Nyquist. Shorter inputs are zero-padded.
func (s *Spectrum) Analyze(mono []float64) ([]float64, error) {
	windowed := make([]float64, s.size)
	copy(windowed, mono)
	vecmath.MulBlockInPlace(windowed, s.window)
	for i, v := range windowed {
		s.in[i] = complex(v, 0)
	}
	if err := s.plan.Forward(s.out, s.in); err != nil {
		return nil, fmt.Errorf("spectrum forward fft: %w", err)
	}
	for k := 0; k <= s.size/2; k++ {
		s.re[k] = real(s.out[k])
		s.im[k] = imag(s.out[k])
	}
	mags := make([]float64, s.size/2+1)
	vecmath.Magnitude(mags, s.re, s.im)
	return mags, nil
}

// DominantFrequency analyzes mono and returns the frequency of the strongest
// non-DC bin.
func (s *Spectrum) DominantFrequency(mono []float64, sampleRate float64) (float64, error) {
	mags, err := s.Analyze(mono)
	if err != nil {
		return 0, err
	}
	best := 1
	for k := 2; k < len(mags); k++ {
		if mags[k] > mags[best] {
			best = k
		}
	}
	return s.BinFrequency(best, sampleRate), nil
}
