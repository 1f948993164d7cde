package lfo

import "math"

// Waveform kinds.
const (
	WaveSine = iota
	WaveTriangle
	WaveSaw
	WaveSquare
	WaveNoise
)

const (
	minRateHz = 0.01
	maxRateHz = 20.0
)

// LFO is a low-frequency oscillator producing a per-sample modulation signal.
// It is shared across all voices in an engine (global LFO). Output is in
// [-amount, amount] when bipolar, [0, amount] otherwise.
type LFO struct {
	waveform  int
	rateHz    float64
	amount    float64
	phase     float64 // [0, 1)
	bipolar   bool
	tempoSync bool
	division  float64 // cycles per beat: 1 = quarter note, 2 = eighth...
	keySync   bool
	fadeTime  float64 // seconds to ramp depth 0→1 after Trigger
	fadeLevel float64
	noiseVal  float64
	rng       uint32
}

// New returns an LFO with the given waveform, free-running rate and depth.
func New(waveform int, rateHz, amount float64) *LFO {
	l := &LFO{fadeLevel: 1, bipolar: true, division: 1, rng: 0x2F6E2B1}
	l.Set(waveform, rateHz, amount)
	return l
}

// Set configures waveform, rate and depth. Rate is clamped to [0.01, 20] Hz
// unless zero, which silences the LFO.
func (l *LFO) Set(waveform int, rateHz, amount float64) {
	if waveform < WaveSine || waveform > WaveNoise {
		waveform = WaveTriangle
	}
	l.waveform = waveform
	if rateHz != 0 {
		rateHz = clamp(rateHz, minRateHz, maxRateHz)
	}
	l.rateHz = rateHz
	l.amount = amount
	if l.division == 0 {
		l.division = 1
	}
	if l.fadeTime == 0 {
		l.fadeLevel = 1
	}
}

// SetTempoSync switches the rate to a musical division of the engine tempo.
// division 1 = quarter note per cycle, 2 = eighth, 0.5 = half note.
func (l *LFO) SetTempoSync(enabled bool, division float64) {
	l.tempoSync = enabled
	if division > 0 {
		l.division = division
	}
}

// SetKeySync makes Trigger reset the phase on every note-on.
func (l *LFO) SetKeySync(enabled bool) { l.keySync = enabled }

// SetBipolar selects [-1,1] (true) or [0,1] (false) output range.
func (l *LFO) SetBipolar(bipolar bool) { l.bipolar = bipolar }

// SetFadeIn sets the depth ramp time after Trigger. Zero disables fading.
func (l *LFO) SetFadeIn(seconds float64) {
	if seconds < 0 {
		seconds = 0
	}
	l.fadeTime = seconds
	if seconds == 0 {
		l.fadeLevel = 1
	}
}

// Trigger is called on note-on. It restarts the fade-in ramp and, with key
// sync enabled, resets the phase.
func (l *LFO) Trigger() {
	if l.keySync {
		l.phase = 0
	}
	if l.fadeTime > 0 {
		l.fadeLevel = 0
	}
}

// Active reports whether the LFO contributes any modulation.
func (l *LFO) Active() bool { return l.amount != 0 && (l.rateHz != 0 || l.tempoSync) }

// Reset zeros the phase and restarts any fade.
func (l *LFO) Reset() {
	l.phase = 0
	l.noiseVal = 0
	if l.fadeTime > 0 {
		l.fadeLevel = 0
	} else {
		l.fadeLevel = 1
	}
}

// Sample advances the LFO by one sample and returns its output. tempoBPM is
// only consulted in tempo-sync mode.
func (l *LFO) Sample(sampleRate, tempoBPM float64) float64 {
	if l.amount == 0 || sampleRate <= 0 {
		return 0
	}
	rate := l.rateHz
	if l.tempoSync && tempoBPM > 0 {
		// Quarter note at 120 BPM = 2 Hz.
		rate = tempoBPM / 60.0 * l.division
	}
	if rate == 0 {
		return 0
	}

	if l.fadeLevel < 1 && l.fadeTime > 0 {
		l.fadeLevel += 1.0 / (l.fadeTime * sampleRate)
		if l.fadeLevel > 1 {
			l.fadeLevel = 1
		}
	}

	var out float64
	switch l.waveform {
	case WaveSine:
		out = math.Sin(l.phase * 2 * math.Pi)
	case WaveSaw:
		out = 1.0 - 2.0*l.phase
	case WaveSquare:
		if l.phase < 0.5 {
			out = 1.0
		} else {
			out = -1.0
		}
	case WaveNoise:
		out = l.noiseVal
	default: // WaveTriangle
		if l.phase < 0.5 {
			out = 4.0*l.phase - 1.0
		} else {
			out = 3.0 - 4.0*l.phase
		}
	}

	oldPhase := l.phase
	l.phase += rate / sampleRate
	for l.phase >= 1.0 {
		l.phase -= 1.0
	}
	// Sample-and-hold noise: new held value once per cycle.
	if l.waveform == WaveNoise && l.phase < oldPhase {
		l.rng = l.rng*1664525 + 1013904223
		l.noiseVal = float64(l.rng>>8)/8388608.0 - 1.0
	}

	if !l.bipolar {
		out = (out + 1.0) * 0.5
	}
	return out * l.amount * l.fadeLevel
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
