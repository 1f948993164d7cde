package subsynth

import (
	"math"
	"testing"

	"github.com/cbegin/subsynth-go/internal/analysis"
)

const testRate = 48000

func mustSynth(t *testing.T, opts ...Option) *Synth {
	t.Helper()
	s, err := NewSynth(testRate, opts...)
	if err != nil {
		t.Fatalf("NewSynth: %v", err)
	}
	return s
}

func TestNewSynthRejectsBadSampleRate(t *testing.T) {
	if _, err := NewSynth(0); err == nil {
		t.Error("expected error for zero sample rate")
	}
	if _, err := NewSynth(-48000); err == nil {
		t.Error("expected error for negative sample rate")
	}
}

func TestParamChangesApplyBeforeBlock(t *testing.T) {
	s := mustSynth(t)
	if !s.SubmitParam(ParamMasterVolume, 0.75) {
		t.Fatal("push refused on empty queue")
	}
	s.SubmitParam(ParamTempo, 128)
	if s.MasterVolume() == 0.75 {
		t.Fatal("change applied before any block was processed")
	}
	s.Process(make([]float32, 128))
	if s.MasterVolume() != 0.75 {
		t.Errorf("master volume = %f, want 0.75", s.MasterVolume())
	}
	if s.Tempo() != 128 {
		t.Errorf("tempo = %f, want 128", s.Tempo())
	}
}

func TestParamChangesLastWins(t *testing.T) {
	s := mustSynth(t)
	s.SubmitParam(ParamFilterCutoff, 500)
	s.SubmitParam(ParamFilterCutoff, 4000)
	s.Process(make([]float32, 128))
	if s.FilterCutoff() != 4000 {
		t.Errorf("cutoff = %f, want the later change to win", s.FilterCutoff())
	}
}

func TestQueueOverflowDropsNewest(t *testing.T) {
	s := mustSynth(t, WithQueueCapacity(4))
	for i := 0; i < 4; i++ {
		if !s.SubmitParam(ParamMasterVolume, float64(i)*0.1) {
			t.Fatalf("push %d refused below capacity", i)
		}
	}
	if s.SubmitParam(ParamMasterVolume, 0.9) {
		t.Error("push accepted beyond capacity")
	}
	if s.PendingParams() != 4 {
		t.Errorf("pending = %d, want 4", s.PendingParams())
	}
	s.Process(make([]float32, 128))
	if s.MasterVolume() != 0.3 {
		t.Errorf("master volume = %f, want last accepted 0.3", s.MasterVolume())
	}
	if s.PendingParams() != 0 {
		t.Errorf("pending after drain = %d, want 0", s.PendingParams())
	}
}

// renderHeldNote renders one second of a held note at the given master
// volume and returns the output RMS. Low velocity keeps the signal well
// inside the soft clipper's linear region.
func renderHeldNoteRMS(t *testing.T, volume float64) float64 {
	t.Helper()
	s := mustSynth(t)
	s.SubmitParam(ParamMasterVolume, volume)
	s.NoteOn(60, 0.2)
	return analysis.RMS(RenderSeconds(s, 1.0))
}

func TestMasterVolumeScalesLinearly(t *testing.T) {
	quiet := renderHeldNoteRMS(t, 0.25)
	loud := renderHeldNoteRMS(t, 0.5)
	if quiet == 0 {
		t.Fatal("no output at volume 0.25")
	}
	ratio := loud / quiet
	if ratio < 1.8 || ratio > 2.2 {
		t.Errorf("RMS ratio at 2x volume = %f, want 2.0 +- 10%%", ratio)
	}
}

func TestFilterCutoffShapesOutput(t *testing.T) {
	renderAtCutoff := func(cutoff float64) float64 {
		s := mustSynth(t)
		s.SubmitParam(ParamMasterVolume, 0.2)
		s.SubmitParam(ParamFilterCutoff, cutoff)
		s.NoteOn(81, 0.3) // A5, fundamental 880 Hz
		return analysis.RMS(RenderSeconds(s, 1.0))
	}
	open := renderAtCutoff(8000)
	closed := renderAtCutoff(200)
	if open == 0 {
		t.Fatal("no output with open filter")
	}
	if closed > open*0.6 {
		t.Errorf("closing the filter dropped RMS from %f only to %f, want >= 40%% drop", open, closed)
	}
}

func TestDelayExtendsTheTail(t *testing.T) {
	tailEnergy := func(withDelay bool) float64 {
		s := mustSynth(t)
		if withDelay {
			s.SubmitParam(ParamDelayEnabled, 1)
			s.SubmitParam(ParamDelayTime, 0.25)
			s.SubmitParam(ParamDelayFeedback, 0.5)
			s.SubmitParam(ParamDelayMix, 0.5)
		}
		s.NoteOn(64, 0.5)
		RenderSeconds(s, 0.2)
		s.NoteOff(64)
		RenderSeconds(s, 0.3) // release finishes here
		tail := RenderSeconds(s, 1.0)
		var sum float64
		for _, v := range tail {
			sum += float64(v) * float64(v)
		}
		return sum
	}
	dry := tailEnergy(false)
	wet := tailEnergy(true)
	if wet < dry*2.5+1e-9 {
		t.Errorf("delay tail energy %g not well above dry %g", wet, dry)
	}
}

func TestModWheelRoutingMovesCutoffSpectrum(t *testing.T) {
	render := func(wheel float64) []float32 {
		s := mustSynth(t)
		s.Matrix().AddRouting(SrcModWheel, DestFilterCutoff, 1.0)
		s.SubmitParam(ParamFilterCutoff, 300)
		s.SubmitParam(ParamModWheel, wheel)
		s.NoteOn(81, 0.3)
		return RenderSeconds(s, 0.5)
	}
	closed := analysis.RMS(render(0))
	opened := analysis.RMS(render(1))
	// Full wheel adds up to 8 kHz of cutoff, letting the saw's harmonics back
	// through.
	if opened <= closed*1.2 {
		t.Errorf("mod wheel did not open the filter: closed RMS %f, opened RMS %f", closed, opened)
	}
}

func TestRenderSecondsLength(t *testing.T) {
	s := mustSynth(t)
	out := RenderSeconds(s, 0.5)
	if len(out) != testRate {
		t.Errorf("len = %d, want %d", len(out), testRate)
	}
	if RenderSeconds(s, 0) != nil {
		t.Error("zero duration should render nothing")
	}
}

func TestRenderedFrequencyMatchesNote(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Osc1.Waveform = WaveSine
	cfg.Osc2.Waveform = WaveSine
	cfg.Osc2DetuneCents = 0
	cfg.FilterCutoff = 20000
	s := mustSynth(t, WithConfig(cfg))
	s.NoteOn(69, 0.5)
	out := RenderSeconds(s, 0.5)

	sp, err := analysis.NewSpectrum(8192)
	if err != nil {
		t.Fatalf("NewSpectrum: %v", err)
	}
	mono := analysis.MonoMix(out)
	got, err := sp.DominantFrequency(mono[len(mono)-8192:], testRate)
	if err != nil {
		t.Fatalf("DominantFrequency: %v", err)
	}
	if math.Abs(got-440) > 12 {
		t.Errorf("dominant frequency = %f, want ~440", got)
	}
}

func TestWAVRoundTrip(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 0.25}
	data := EncodeWAVFloat32LE(samples, testRate, 2)
	got, rate, channels, err := DecodeWAVFloat32(data)
	if err != nil {
		t.Fatalf("DecodeWAVFloat32: %v", err)
	}
	if rate != testRate || channels != 2 {
		t.Errorf("rate=%d channels=%d, want %d/2", rate, channels, testRate)
	}
	if len(got) != len(samples) {
		t.Fatalf("len = %d, want %d", len(got), len(samples))
	}
	for i := range samples {
		if got[i] != samples[i] {
			t.Errorf("sample %d = %f, want %f", i, got[i], samples[i])
		}
	}
}

func TestDecodeWAVRejectsGarbage(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("hello"), []byte("RIFFxxxxWAVE")} {
		if s, _, _, err := DecodeWAVFloat32(data); err == nil || s != nil {
			t.Errorf("decode of %q: samples=%v err=%v, want nil+error", data, s, err)
		}
	}
}

func TestApplyPresetConfiguresEverything(t *testing.T) {
	p := DefaultPreset()
	p.Engine.FilterCutoff = 2500
	p.Routings = append(p.Routings, PresetRouting{
		Source: int(SrcLFO1), Dest: int(DestOsc1Pitch), Depth: 0.4,
	})
	p.FX.Delay.Enabled = true
	p.FX.Delay.TimeSec = 0.4

	s := mustSynth(t)
	s.ApplyPreset(p)
	if s.FilterCutoff() != 2500 {
		t.Errorf("cutoff = %f, want 2500", s.FilterCutoff())
	}
	if got := s.Matrix().Routings(); len(got) != 1 || got[0].Depth != 0.4 {
		t.Errorf("routings = %+v, want one at depth 0.4", got)
	}
	if !s.Effects().Delay().Enabled() {
		t.Error("delay not enabled by preset")
	}
	if math.Abs(s.Effects().Delay().Time()-0.4) > 1e-3 {
		t.Errorf("delay time = %f, want 0.4", s.Effects().Delay().Time())
	}
}
