// Package preset persists complete synth patches as JSON documents: the voice
// engine configuration, LFO setups, modulation routings and effect settings.
package preset

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cbegin/subsynth-go/internal/synth"
)

// LFOSettings captures one global LFO.
type LFOSettings struct {
	Waveform  int     `json:"waveform"`
	RateHz    float64 `json:"rate_hz"`
	Amount    float64 `json:"amount"`
	TempoSync bool    `json:"tempo_sync,omitempty"`
	Division  float64 `json:"division,omitempty"`
	KeySync   bool    `json:"key_sync,omitempty"`
	Bipolar   bool    `json:"bipolar"`
	FadeInSec float64 `json:"fade_in_sec,omitempty"`
}

// RoutingSettings captures one modulation matrix entry.
type RoutingSettings struct {
	Source int     `json:"source"`
	Dest   int     `json:"dest"`
	Depth  float64 `json:"depth"`
}

// DistortionSettings, DelaySettings and ReverbSettings capture the effect
// rack slots.
type DistortionSettings struct {
	Enabled bool    `json:"enabled"`
	Drive   float64 `json:"drive"`
	Mix     float64 `json:"mix"`
}

type DelaySettings struct {
	Enabled  bool    `json:"enabled"`
	TimeSec  float64 `json:"time_sec"`
	Feedback float64 `json:"feedback"`
	Mix      float64 `json:"mix"`
}

type ReverbSettings struct {
	Enabled bool    `json:"enabled"`
	Size    float64 `json:"size"`
	Damping float64 `json:"damping"`
	Mix     float64 `json:"mix"`
}

type EffectsSettings struct {
	Distortion DistortionSettings `json:"distortion"`
	Delay      DelaySettings      `json:"delay"`
	Reverb     ReverbSettings     `json:"reverb"`
}

// Preset is one complete patch.
type Preset struct {
	Name     string            `json:"name"`
	Engine   synth.Config      `json:"engine"`
	LFOs     []LFOSettings     `json:"lfos,omitempty"`
	Routings []RoutingSettings `json:"routings,omitempty"`
	FX       EffectsSettings   `json:"fx"`
}

// Default returns the stock patch.
func Default() Preset {
	return Preset{
		Name:   "init",
		Engine: synth.DefaultConfig(),
		LFOs: []LFOSettings{
			{Waveform: 1, RateHz: 2, Amount: 0, Bipolar: true},
		},
		FX: EffectsSettings{
			Distortion: DistortionSettings{Drive: 4, Mix: 0.5},
			Delay:      DelaySettings{TimeSec: 0.3, Feedback: 0.4, Mix: 0.5},
			Reverb:     ReverbSettings{Size: 0.5, Damping: 0.4, Mix: 0.3},
		},
	}
}

// ToJSON serializes the preset, indented for hand editing.
func ToJSON(p Preset) ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// FromJSON parses a preset document. On failure it returns the zero Preset.
func FromJSON(data []byte) (Preset, error) {
	var p Preset
	if err := json.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("parse preset: %w", err)
	}
	return p, nil
}

// Save writes the preset to path.
func Save(path string, p Preset) error {
	data, err := ToJSON(p)
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

// Load reads a preset from path. On any failure it returns the zero Preset
// and an error; callers can fall back to Default.
func Load(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("read preset: %w", err)
	}
	return FromJSON(data)
}
