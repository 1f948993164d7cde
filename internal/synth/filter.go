package synth

import "math"

// FilterMode selects which state-variable tap the filter outputs.
type FilterMode int

const (
	FilterLowPass FilterMode = iota
	FilterHighPass
	FilterBandPass
	FilterNotch
	FilterAllPass
	filterModeCount
)

const (
	minCutoffHz = 20.0
	maxCutoffHz = 20000.0
)

// Filter is a Chamberlin state-variable filter. One recurrence per sample
// yields low/high/band/notch taps simultaneously; the mode picks the output.
// The accumulators persist across calls and are cleared only on mode change
// or explicit Reset.
type Filter struct {
	mode FilterMode

	low, high, band, notch float64
}

// SetMode switches the output tap, clearing filter state so the new response
// starts clean.
func (f *Filter) SetMode(mode FilterMode) {
	if mode < FilterLowPass || mode >= filterModeCount {
		mode = FilterLowPass
	}
	if mode != f.mode {
		f.mode = mode
		f.Reset()
	}
}

// Mode returns the current output tap.
func (f *Filter) Mode() FilterMode { return f.mode }

// Reset clears the accumulators.
func (f *Filter) Reset() {
	f.low, f.high, f.band, f.notch = 0, 0, 0, 0
}

// Process filters one sample. Cutoff and resonance are taken per call, so
// envelopes and the mod matrix can move them every sample; coefficients are
// recomputed on each call.
func (f *Filter) Process(x, cutoff, resonance, sampleRate float64) float64 {
	cutoff = clamp(cutoff, minCutoffHz, sampleRate*0.45)
	resonance = clamp(resonance, 0, 0.99)

	// The recurrence diverges once fc exceeds ~1 (cutoff above sampleRate/6)
	// at low damping, so the coefficient is capped there. Cutoffs past that
	// point all sound "open"; the cap only flattens the very top.
	fc := 2.0 * math.Sin(math.Pi*cutoff/sampleRate)
	if fc > 1.0 {
		fc = 1.0
	}
	// q below 0.1 lets the feedback path self-oscillate without bound.
	q := clamp(1.0-resonance, 0.1, 1.0)

	f.low += fc * f.band
	f.high = x - f.low - q*f.band
	f.band += fc * f.high
	f.notch = f.high + f.low

	switch f.mode {
	case FilterLowPass:
		return f.low
	case FilterHighPass:
		return f.high
	case FilterBandPass:
		return f.band
	case FilterNotch:
		return f.notch
	case FilterAllPass:
		return f.low - f.high
	default:
		return x
	}
}
