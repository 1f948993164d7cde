package analysis

import (
	"math"
	"testing"
)

func TestPeakAndRMS(t *testing.T) {
	buf := []float32{0.5, -0.5, 0.5, -0.5}
	if p := Peak(buf); p != 0.5 {
		t.Errorf("Peak = %f, want 0.5", p)
	}
	if r := RMS(buf); math.Abs(r-0.5) > 1e-6 {
		t.Errorf("RMS = %f, want 0.5", r)
	}
	if RMS(nil) != 0 || Peak(nil) != 0 {
		t.Error("empty buffer should measure 0")
	}
}

func TestMonoMixAveragesChannels(t *testing.T) {
	mono := MonoMix([]float32{1, 0, 0.5, 0.5, -1, 1})
	want := []float64{0.5, 0.5, 0}
	for i := range want {
		if math.Abs(mono[i]-want[i]) > 1e-9 {
			t.Errorf("frame %d = %f, want %f", i, mono[i], want[i])
		}
	}
}

func TestDominantFrequencyFindsSine(t *testing.T) {
	const (
		sampleRate = 48000.0
		freq       = 440.0
		fftSize    = 4096
	)
	s, err := NewSpectrum(fftSize)
	if err != nil {
		t.Fatalf("NewSpectrum: %v", err)
	}
	mono := make([]float64, fftSize)
	for i := range mono {
		mono[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	got, err := s.DominantFrequency(mono, sampleRate)
	if err != nil {
		t.Fatalf("DominantFrequency: %v", err)
	}
	binWidth := sampleRate / fftSize
	if math.Abs(got-freq) > binWidth {
		t.Errorf("dominant frequency = %f, want %f +- %f", got, freq, binWidth)
	}
}

func TestSpectrumSeparatesTones(t *testing.T) {
	const sampleRate = 48000.0
	s, err := NewSpectrum(4096)
	if err != nil {
		t.Fatalf("NewSpectrum: %v", err)
	}
	mono := make([]float64, 4096)
	for i := range mono {
		ti := float64(i) / sampleRate
		mono[i] = math.Sin(2*math.Pi*500*ti) + 0.2*math.Sin(2*math.Pi*5000*ti)
	}
	mags, err := s.Analyze(mono)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	binOf := func(f float64) int { return int(f / sampleRate * 4096) }
	if mags[binOf(500)] <= mags[binOf(5000)] {
		t.Error("louder tone does not dominate its bin")
	}
	if mags[binOf(5000)] <= mags[binOf(2000)]*2 {
		t.Error("quiet tone not visible above an empty bin")
	}
}
