package synth

import "math"

// Waveform selects an oscillator shape.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSaw
	WaveSquare
	WaveTriangle
	WaveNoise
)

// MaxUnison bounds the number of stacked detuned copies per oscillator.
const MaxUnison = 5

// noiseRNG is the engine-wide noise generator. It is seeded once at engine
// construction; oscillators share it so retriggering voices never reseeds on
// the audio path.
type noiseRNG struct {
	state uint32
}

func (r *noiseRNG) next() float64 {
	r.state = r.state*1664525 + 1013904223
	return float64(r.state>>8)/8388608.0 - 1.0
}

// Oscillator produces one waveform sample per call. With Unison > 1 it stacks
// detuned copies, each with its own phase, and returns their average so
// loudness stays roughly constant as the unison count changes.
type Oscillator struct {
	Waveform    Waveform
	PulseWidth  float64 // square duty cycle, 0..1
	Unison      int     // 1..MaxUnison
	DetuneCents float64 // total spread across unison voices

	phases [MaxUnison]float64 // [0, 1) each
	noise  *noiseRNG
}

func (o *Oscillator) init(noise *noiseRNG) {
	o.Waveform = WaveSaw
	o.PulseWidth = 0.5
	o.Unison = 1
	o.noise = noise
}

// ResetPhase restarts every unison phase. Called on note-on when the engine's
// phase-reset policy asks for a clean transient.
func (o *Oscillator) ResetPhase() {
	for i := range o.phases {
		o.phases[i] = 0
	}
}

// Process renders one sample at the given base frequency, advancing all
// unison phases. pulseWidth is the per-sample modulated duty cycle.
func (o *Oscillator) Process(freq, pulseWidth, sampleRate float64) float64 {
	n := o.Unison
	if n < 1 {
		n = 1
	}
	if n > MaxUnison {
		n = MaxUnison
	}
	if n == 1 {
		s := o.sampleAt(o.phases[0], pulseWidth)
		o.phases[0] = advancePhase(o.phases[0], freq, sampleRate)
		return s
	}

	var sum float64
	for i := 0; i < n; i++ {
		// Spread voices ±DetuneCents/2 around the base frequency.
		spread := float64(i)/float64(n-1) - 0.5
		f := freq * centsToRatio(spread*o.DetuneCents)
		sum += o.sampleAt(o.phases[i], pulseWidth)
		o.phases[i] = advancePhase(o.phases[i], f, sampleRate)
	}
	return sum / float64(n)
}

func (o *Oscillator) sampleAt(phase, pw float64) float64 {
	switch o.Waveform {
	case WaveSine:
		return math.Sin(phase * 2 * math.Pi)
	case WaveSaw:
		return phase*2.0 - 1.0
	case WaveSquare:
		if phase < pw {
			return 1.0
		}
		return -1.0
	case WaveTriangle:
		if phase < 0.5 {
			return phase*4.0 - 1.0
		}
		return 3.0 - phase*4.0
	case WaveNoise:
		if o.noise == nil {
			return 0
		}
		return o.noise.next()
	default:
		return 0
	}
}

func advancePhase(phase, freq, sampleRate float64) float64 {
	phase += freq / sampleRate
	if phase >= 1.0 {
		phase -= math.Floor(phase)
	}
	return phase
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func centsToRatio(cents float64) float64 {
	if cents == 0 {
		return 1
	}
	return math.Pow(2, cents/1200)
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

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
