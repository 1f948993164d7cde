// Package subsynth is a polyphonic subtractive synthesizer: a pool of
// two-oscillator voices through state variable filters and ADSR envelopes,
// global LFOs and a modulation matrix, and a post-engine effect rack of
// distortion, delay and reverb.
//
// The Synth facade renders interleaved stereo float32 blocks. Control code
// talks to a running synth through note events and the lock-free parameter
// queue; the audio thread drains the queue at every block boundary.
package subsynth

import (
	"errors"

	"github.com/cbegin/subsynth-go/internal/effects"
	"github.com/cbegin/subsynth-go/internal/lfo"
	"github.com/cbegin/subsynth-go/internal/params"
	"github.com/cbegin/subsynth-go/internal/preset"
	"github.com/cbegin/subsynth-go/internal/synth"
)

// Configuration and control types, re-exported from the internal packages so
// callers never import them directly.
type (
	Config     = synth.Config
	OscConfig  = synth.OscConfig
	EnvConfig  = synth.EnvConfig
	Waveform   = synth.Waveform
	FilterMode = synth.FilterMode
	CurveKind  = synth.CurveKind
	ArpMode    = synth.ArpMode
	VoiceState = synth.VoiceState
	ModSource  = synth.ModSource
	ModDest    = synth.ModDest
	Routing    = synth.Routing
	ModMatrix  = synth.ModMatrix
	LFO        = lfo.LFO
	Rack       = effects.Rack
	ParamType  = params.Type
	Change     = params.Change

	Preset        = preset.Preset
	PresetLFO     = preset.LFOSettings
	PresetRouting = preset.RoutingSettings
	PresetEffects = preset.EffectsSettings
)

// Oscillator waveforms.
const (
	WaveSine     = synth.WaveSine
	WaveSaw      = synth.WaveSaw
	WaveSquare   = synth.WaveSquare
	WaveTriangle = synth.WaveTriangle
	WaveNoise    = synth.WaveNoise
)

// Filter modes.
const (
	FilterLowPass  = synth.FilterLowPass
	FilterHighPass = synth.FilterHighPass
	FilterBandPass = synth.FilterBandPass
	FilterNotch    = synth.FilterNotch
	FilterAllPass  = synth.FilterAllPass
)

// Envelope curves.
const (
	CurveExponential = synth.CurveExponential
	CurveLinear      = synth.CurveLinear
)

// Arpeggiator modes.
const (
	ArpUp     = synth.ArpUp
	ArpDown   = synth.ArpDown
	ArpUpDown = synth.ArpUpDown
	ArpRandom = synth.ArpRandom
)

// Modulation sources and destinations.
const (
	SrcLFO1       = synth.SrcLFO1
	SrcLFO2       = synth.SrcLFO2
	SrcLFO3       = synth.SrcLFO3
	SrcLFO4       = synth.SrcLFO4
	SrcEnvAmp     = synth.SrcEnvAmp
	SrcEnvFilter  = synth.SrcEnvFilter
	SrcEnvPitch   = synth.SrcEnvPitch
	SrcVelocity   = synth.SrcVelocity
	SrcModWheel   = synth.SrcModWheel
	SrcAftertouch = synth.SrcAftertouch
	SrcKeyTrack   = synth.SrcKeyTrack
	SrcRandom     = synth.SrcRandom

	DestOsc1Pitch       = synth.DestOsc1Pitch
	DestOsc1PulseWidth  = synth.DestOsc1PulseWidth
	DestOsc2Pitch       = synth.DestOsc2Pitch
	DestOsc2PulseWidth  = synth.DestOsc2PulseWidth
	DestFilterCutoff    = synth.DestFilterCutoff
	DestFilterResonance = synth.DestFilterResonance
	DestAmp             = synth.DestAmp
	DestPan             = synth.DestPan
)

// Queue-addressable parameters.
const (
	ParamMasterVolume      = params.MasterVolume
	ParamMasterTune        = params.MasterTune
	ParamTempo             = params.Tempo
	ParamFilterCutoff      = params.FilterCutoff
	ParamFilterResonance   = params.FilterResonance
	ParamFilterMode        = params.FilterMode
	ParamFilterEnvAmount   = params.FilterEnvAmount
	ParamEnvAttack         = params.EnvAttack
	ParamEnvDecay          = params.EnvDecay
	ParamEnvSustain        = params.EnvSustain
	ParamEnvRelease        = params.EnvRelease
	ParamPitchBend         = params.PitchBend
	ParamModWheel          = params.ModWheel
	ParamAftertouch        = params.Aftertouch
	ParamDistortionEnabled = params.DistortionEnabled
	ParamDistortionDrive   = params.DistortionDrive
	ParamDistortionMix     = params.DistortionMix
	ParamDelayEnabled      = params.DelayEnabled
	ParamDelayTime         = params.DelayTime
	ParamDelayFeedback     = params.DelayFeedback
	ParamDelayMix          = params.DelayMix
	ParamDelayFreeze       = params.DelayFreeze
	ParamReverbEnabled     = params.ReverbEnabled
	ParamReverbSize        = params.ReverbSize
	ParamReverbDamping     = params.ReverbDamping
	ParamReverbMix         = params.ReverbMix
	ParamArpEnabled        = params.ArpEnabled
	ParamArpRate           = params.ArpRate
	ParamArpMode           = params.ArpMode
	ParamPanic             = params.Panic
)

// DefaultConfig returns the stock two-saw patch.
func DefaultConfig() Config { return synth.DefaultConfig() }

// DefaultPreset returns the stock patch as a savable preset.
func DefaultPreset() Preset { return preset.Default() }

// LoadPreset reads a preset file. On failure it returns the zero preset and
// an error; callers typically fall back to DefaultPreset.
func LoadPreset(path string) (Preset, error) { return preset.Load(path) }

// SavePreset writes a preset file.
func SavePreset(path string, p Preset) error { return preset.Save(path, p) }

// Option configures a Synth at construction.
type Option func(*synthOptions)

type synthOptions struct {
	cfg      synth.Config
	queueCap int
}

// WithConfig replaces the default engine configuration.
func WithConfig(cfg Config) Option {
	return func(o *synthOptions) { o.cfg = cfg }
}

// WithQueueCapacity sizes the parameter queue (default 256).
func WithQueueCapacity(n int) Option {
	return func(o *synthOptions) { o.queueCap = n }
}

// Synth couples the voice engine, the effect rack and the parameter queue.
// Exactly one goroutine may call Process (the audio thread); any single other
// goroutine may call SubmitParam concurrently. Note events and the remaining
// methods are control-thread calls.
type Synth struct {
	sampleRate int
	engine     *synth.Engine
	rack       *effects.Rack
	queue      *params.Queue
}

// NewSynth creates a synth rendering at sampleRate.
func NewSynth(sampleRate int, opts ...Option) (*Synth, error) {
	if sampleRate <= 0 {
		return nil, errors.New("sampleRate must be positive")
	}
	o := synthOptions{cfg: synth.DefaultConfig(), queueCap: params.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	return &Synth{
		sampleRate: sampleRate,
		engine:     synth.New(sampleRate, o.cfg),
		rack:       effects.NewRack(sampleRate),
		queue:      params.NewQueue(o.queueCap),
	}, nil
}

// SampleRate returns the fixed rendering rate in Hz.
func (s *Synth) SampleRate() int { return s.sampleRate }

// Process renders len(dst)/2 interleaved stereo frames. Pending parameter
// changes are drained first, so every change in the queue before this call
// affects the whole block.
func (s *Synth) Process(dst []float32) {
	s.queue.Drain(func(c params.Change) {
		if !s.rack.ApplyChange(c) {
			s.engine.ApplyChange(c)
		}
	})
	s.engine.ProcessBlock(dst)
	s.rack.ProcessBlock(dst)
}

// SubmitParam queues one parameter change for the next block. It reports
// false when the queue is full and the change was dropped.
func (s *Synth) SubmitParam(t ParamType, value float64) bool {
	return s.queue.Push(t, value)
}

// PendingParams returns the number of queued, not yet applied changes.
func (s *Synth) PendingParams() int { return s.queue.Len() }

// NoteOn triggers a note (0..127) at velocity (0..1).
func (s *Synth) NoteOn(note int, velocity float64) { s.engine.NoteOn(note, velocity) }

// NoteOff releases a note. Redundant calls are harmless.
func (s *Synth) NoteOff(note int) { s.engine.NoteOff(note) }

// AllNotesOff releases every sounding voice.
func (s *Synth) AllNotesOff() { s.engine.AllNotesOff() }

// PitchBend applies a bend in [-1, 1], scaled by the configured bend range.
func (s *Synth) PitchBend(amount float64) { s.engine.PitchBend(amount) }

// SetModWheel feeds the mod wheel modulation source, 0..1.
func (s *Synth) SetModWheel(v float64) { s.engine.SetModWheel(v) }

// SetAftertouch feeds the aftertouch modulation source, 0..1.
func (s *Synth) SetAftertouch(v float64) { s.engine.SetAftertouch(v) }

// LFO returns one of the global LFOs for configuration.
func (s *Synth) LFO(i int) *LFO { return s.engine.LFO(i) }

// Matrix returns the modulation matrix for routing setup.
func (s *Synth) Matrix() *ModMatrix { return s.engine.Matrix() }

// Effects returns the post-engine rack for direct configuration.
func (s *Synth) Effects() *Rack { return s.rack }

// ActiveVoiceCount reports how many voices are sounding.
func (s *Synth) ActiveVoiceCount() int { return s.engine.ActiveVoiceCount() }

// VoiceState exposes one pool slot's lifecycle for displays.
func (s *Synth) VoiceState(slot int) VoiceState { return s.engine.VoiceState(slot) }

// VoiceNote returns the note a pool slot currently holds.
func (s *Synth) VoiceNote(slot int) int { return s.engine.VoiceNote(slot) }

// Meter returns the engine's previous-block peak and RMS.
func (s *Synth) Meter() (peak, rms float64) { return s.engine.Meter() }

// MasterVolume reports the current master volume.
func (s *Synth) MasterVolume() float64 { return s.engine.MasterVolume() }

// FilterCutoff reports the current filter cutoff in Hz.
func (s *Synth) FilterCutoff() float64 { return s.engine.FilterCutoff() }

// FilterResonance reports the current filter resonance.
func (s *Synth) FilterResonance() float64 { return s.engine.FilterResonance() }

// Tempo reports the current tempo in BPM.
func (s *Synth) Tempo() float64 { return s.engine.Tempo() }

// AmpEnvelope reports the current amplitude ADSR values.
func (s *Synth) AmpEnvelope() (attack, decay, sustain, release float64) {
	return s.engine.AmpEnvelope()
}

// ApplyPreset rebuilds the engine from a preset and configures the LFOs,
// modulation routings and effects. It replaces all voice state, so call it
// before rendering starts or from the rendering goroutine between blocks.
func (s *Synth) ApplyPreset(p Preset) {
	s.engine = synth.New(s.sampleRate, p.Engine)
	for i, l := range p.LFOs {
		if i >= synth.NumLFOs {
			break
		}
		target := s.engine.LFO(i)
		target.Set(l.Waveform, l.RateHz, l.Amount)
		target.SetTempoSync(l.TempoSync, l.Division)
		target.SetKeySync(l.KeySync)
		target.SetBipolar(l.Bipolar)
		target.SetFadeIn(l.FadeInSec)
	}
	m := s.engine.Matrix()
	m.Clear()
	for _, r := range p.Routings {
		m.AddRouting(ModSource(r.Source), ModDest(r.Dest), r.Depth)
	}

	fx := p.FX
	d := s.rack.Distortion()
	d.SetEnabled(fx.Distortion.Enabled)
	d.SetDrive(fx.Distortion.Drive)
	d.SetMix(fx.Distortion.Mix)
	dl := s.rack.Delay()
	dl.SetEnabled(fx.Delay.Enabled)
	dl.SetTime(fx.Delay.TimeSec)
	dl.SetFeedback(fx.Delay.Feedback)
	dl.SetMix(fx.Delay.Mix)
	rv := s.rack.Reverb()
	rv.SetEnabled(fx.Reverb.Enabled)
	rv.SetSize(fx.Reverb.Size)
	rv.SetDamping(fx.Reverb.Damping)
	rv.SetMix(fx.Reverb.Mix)
	s.rack.Reset()
}
