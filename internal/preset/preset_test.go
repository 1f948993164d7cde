package preset

import (
	"path/filepath"
	"testing"

	"github.com/cbegin/subsynth-go/internal/synth"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	p := Default()
	p.Name = "wide lead"
	p.Engine.Osc1.Unison = 5
	p.Engine.Osc1.DetuneCents = 25
	p.Engine.FilterCutoff = 2500
	p.Routings = []RoutingSettings{
		{Source: int(synth.SrcLFO1), Dest: int(synth.DestFilterCutoff), Depth: 0.6},
	}
	p.FX.Delay.Enabled = true
	p.FX.Delay.TimeSec = 0.375

	path := filepath.Join(t.TempDir(), "lead.json")
	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != p.Name {
		t.Errorf("name = %q, want %q", got.Name, p.Name)
	}
	if got.Engine.Osc1.Unison != 5 || got.Engine.Osc1.DetuneCents != 25 {
		t.Errorf("oscillator settings lost: %+v", got.Engine.Osc1)
	}
	if got.Engine.FilterCutoff != 2500 {
		t.Errorf("cutoff = %f, want 2500", got.Engine.FilterCutoff)
	}
	if len(got.Routings) != 1 || got.Routings[0].Depth != 0.6 {
		t.Errorf("routings lost: %+v", got.Routings)
	}
	if !got.FX.Delay.Enabled || got.FX.Delay.TimeSec != 0.375 {
		t.Errorf("delay settings lost: %+v", got.FX.Delay)
	}
}

func TestLoadMissingFileReturnsZero(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if p.Name != "" || len(p.Routings) != 0 {
		t.Errorf("non-zero preset on failure: %+v", p)
	}
}

func TestFromJSONMalformed(t *testing.T) {
	p, err := FromJSON([]byte("{not json"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if p.Name != "" {
		t.Errorf("non-zero preset on parse failure: %+v", p)
	}
}
