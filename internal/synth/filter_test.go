package synth

import (
	"math"
	"testing"
)

// filteredRMS pushes one second of a sine at freq through f and returns the
// output RMS, skipping the first 1000 samples of settling.
func filteredRMS(f *Filter, freq, cutoff, resonance float64) float64 {
	var sum float64
	n := int(testRate)
	skip := 1000
	for i := 0; i < n; i++ {
		x := math.Sin(2 * math.Pi * freq * float64(i) / testRate)
		y := f.Process(x, cutoff, resonance, testRate)
		if i >= skip {
			sum += y * y
		}
	}
	return math.Sqrt(sum / float64(n-skip))
}

func TestFilterLowPassAttenuatesHighs(t *testing.T) {
	var f Filter
	f.SetMode(FilterLowPass)
	low := filteredRMS(&f, 100, 500, 0.2)
	f.Reset()
	high := filteredRMS(&f, 8000, 500, 0.2)
	if high > low*0.3 {
		t.Errorf("low-pass barely attenuated: 100Hz RMS %f, 8kHz RMS %f", low, high)
	}
}

func TestFilterHighPassAttenuatesLows(t *testing.T) {
	var f Filter
	f.SetMode(FilterHighPass)
	low := filteredRMS(&f, 100, 4000, 0.2)
	f.Reset()
	high := filteredRMS(&f, 8000, 4000, 0.2)
	if low > high*0.3 {
		t.Errorf("high-pass barely attenuated: 100Hz RMS %f, 8kHz RMS %f", low, high)
	}
}

func TestFilterBandPassFavorsCenter(t *testing.T) {
	var f Filter
	f.SetMode(FilterBandPass)
	center := filteredRMS(&f, 1000, 1000, 0.3)
	f.Reset()
	below := filteredRMS(&f, 60, 1000, 0.3)
	f.Reset()
	above := filteredRMS(&f, 12000, 1000, 0.3)
	if center < below*2 || center < above*2 {
		t.Errorf("band-pass not selective: center %f, below %f, above %f", center, below, above)
	}
}

func TestFilterNotchCutsCenter(t *testing.T) {
	var f Filter
	f.SetMode(FilterNotch)
	center := filteredRMS(&f, 1000, 1000, 0.3)
	f.Reset()
	away := filteredRMS(&f, 60, 1000, 0.3)
	if center > away*0.7 {
		t.Errorf("notch did not cut center: center %f, away %f", center, away)
	}
}

func TestFilterResonanceBoostsNearCutoff(t *testing.T) {
	var flat, peaked Filter
	flat.SetMode(FilterLowPass)
	peaked.SetMode(FilterLowPass)
	a := filteredRMS(&flat, 900, 1000, 0.0)
	b := filteredRMS(&peaked, 900, 1000, 0.9)
	if b <= a {
		t.Errorf("resonance did not boost near cutoff: q=0 RMS %f, q=0.9 RMS %f", a, b)
	}
}

func TestFilterStaysBoundedAtExtremes(t *testing.T) {
	var f Filter
	f.SetMode(FilterLowPass)
	// Cutoff above Nyquist margin and full resonance must clamp, not blow up.
	for i := 0; i < 48000; i++ {
		x := math.Sin(2 * math.Pi * 440 * float64(i) / testRate)
		y := f.Process(x, 50000, 1.0, testRate)
		if math.IsNaN(y) || math.IsInf(y, 0) || math.Abs(y) > 100 {
			t.Fatalf("filter diverged at sample %d: %f", i, y)
		}
	}
}

func TestFilterModeChangeResetsState(t *testing.T) {
	var f Filter
	f.SetMode(FilterLowPass)
	for i := 0; i < 1000; i++ {
		f.Process(1.0, 1000, 0.3, testRate)
	}
	f.SetMode(FilterHighPass)
	if f.Mode() != FilterHighPass {
		t.Fatalf("mode = %v, want high-pass", f.Mode())
	}
	if f.low != 0 || f.band != 0 {
		t.Error("state not cleared on mode change")
	}
	// Same mode again must not disturb running state.
	f.Process(1.0, 1000, 0.3, testRate)
	band := f.band
	f.SetMode(FilterHighPass)
	if f.band != band {
		t.Error("redundant SetMode cleared state")
	}
}
