package synth

import (
	"math"
	"testing"
)

func newTestOsc(w Waveform) (*Oscillator, *noiseRNG) {
	rng := &noiseRNG{state: 1}
	o := &Oscillator{}
	o.init(rng)
	o.Waveform = w
	return o, rng
}

func TestOscillatorSineFrequency(t *testing.T) {
	o, _ := newTestOsc(WaveSine)
	// 100 Hz at 48 kHz: count zero crossings over one second.
	var crossings int
	prev := o.Process(100, 0.5, testRate)
	for i := 1; i < int(testRate); i++ {
		v := o.Process(100, 0.5, testRate)
		if (prev < 0 && v >= 0) || (prev >= 0 && v < 0) {
			crossings++
		}
		prev = v
	}
	// 100 Hz → 200 crossings/second.
	if crossings < 198 || crossings > 202 {
		t.Errorf("zero crossings = %d, want ~200", crossings)
	}
}

func TestOscillatorOutputBounded(t *testing.T) {
	for _, w := range []Waveform{WaveSine, WaveSaw, WaveSquare, WaveTriangle, WaveNoise} {
		o, _ := newTestOsc(w)
		for i := 0; i < 10000; i++ {
			v := o.Process(440, 0.5, testRate)
			if v < -1.0001 || v > 1.0001 {
				t.Fatalf("waveform %d sample out of range: %f", w, v)
			}
		}
	}
}

func TestOscillatorPulseWidth(t *testing.T) {
	o, _ := newTestOsc(WaveSquare)
	// 25% duty cycle: roughly a quarter of samples positive.
	pos := 0
	n := 48000
	for i := 0; i < n; i++ {
		if o.Process(100, 0.25, testRate) > 0 {
			pos++
		}
	}
	frac := float64(pos) / float64(n)
	if frac < 0.2 || frac > 0.3 {
		t.Errorf("positive fraction = %f, want ~0.25", frac)
	}
}

func TestOscillatorUnisonAverageKeepsAmplitude(t *testing.T) {
	single, _ := newTestOsc(WaveSaw)
	stacked, _ := newTestOsc(WaveSaw)
	stacked.Unison = 5
	stacked.DetuneCents = 30

	rmsOf := func(o *Oscillator) float64 {
		var sum float64
		n := int(testRate)
		for i := 0; i < n; i++ {
			v := o.Process(220, 0.5, testRate)
			sum += v * v
		}
		return math.Sqrt(sum / float64(n))
	}

	r1 := rmsOf(single)
	r5 := rmsOf(stacked)
	// Averaging keeps unison loudness in the same ballpark as one voice.
	if r5 < r1*0.3 || r5 > r1*1.5 {
		t.Errorf("unison RMS %f too far from single RMS %f", r5, r1)
	}
}

func TestOscillatorPhaseStaysWrapped(t *testing.T) {
	o, _ := newTestOsc(WaveSaw)
	for i := 0; i < 100000; i++ {
		o.Process(19000, 0.5, testRate)
	}
	for _, p := range o.phases {
		if p < 0 || p >= 1 {
			t.Fatalf("phase drifted out of [0,1): %f", p)
		}
	}
}

func TestNoiseSharedRNGAdvances(t *testing.T) {
	rng := &noiseRNG{state: 42}
	a := rng.next()
	b := rng.next()
	if a == b {
		t.Error("rng produced identical consecutive values")
	}
	if a < -1 || a > 1 || b < -1 || b > 1 {
		t.Errorf("rng out of range: %f %f", a, b)
	}
}
