package synth

import (
	"math"

	"github.com/cbegin/subsynth-go/internal/lfo"
	"github.com/cbegin/subsynth-go/internal/params"
)

const (
	// MaxVoices caps the configurable pool size.
	MaxVoices = 32
	// DefaultVoices is the pool size when the config does not say otherwise.
	DefaultVoices = 8
	// NumLFOs is the number of global low-frequency oscillators.
	NumLFOs = 4
)

// OscConfig is the per-oscillator-slot configuration surface.
type OscConfig struct {
	Waveform    Waveform
	PulseWidth  float64
	Unison      int
	DetuneCents float64
}

// EnvConfig configures one ADSR envelope.
type EnvConfig struct {
	AttackSec    float64
	DecaySec     float64
	SustainLvl   float64
	ReleaseSec   float64
	VelocitySens float64
}

// Config is the rarely-changing configuration of a voice engine. Runtime
// parameter changes go through the queue instead.
type Config struct {
	Polyphony int // 1..MaxVoices

	Osc1            OscConfig
	Osc2            OscConfig
	Osc2DetuneCents float64 // static detune of osc2 against osc1

	FilterMode      FilterMode
	FilterCutoff    float64
	FilterResonance float64
	FilterEnvAmount float64

	AmpEnv        EnvConfig
	FilterEnv     EnvConfig
	PitchEnv      EnvConfig
	PitchEnvSemis float64 // pitch envelope span in semitones
	EnvCurve      CurveKind

	// PhaseResetOnTrigger selects the retrigger policy: true resets
	// oscillator phase for a clean transient, false continues the running
	// phase for click-free legato retriggers.
	PhaseResetOnTrigger bool

	Mono      bool
	Legato    bool
	GlideTime float64 // seconds per octave, 0 disables glide

	MasterVolume    float64
	MasterTuneCents float64
	PitchBendRange  int // semitones
	Tempo           float64

	NoiseSeed uint32 // 0 picks a fixed default; seeded once, never on hot paths
}

// DefaultConfig returns the stock patch: two slightly detuned saws into a
// low-pass filter.
func DefaultConfig() Config {
	return Config{
		Polyphony:           DefaultVoices,
		Osc1:                OscConfig{Waveform: WaveSaw, PulseWidth: 0.5, Unison: 1},
		Osc2:                OscConfig{Waveform: WaveSaw, PulseWidth: 0.5, Unison: 1},
		Osc2DetuneCents:     7,
		FilterMode:          FilterLowPass,
		FilterCutoff:        8000,
		FilterResonance:     0.3,
		FilterEnvAmount:     0,
		AmpEnv:              EnvConfig{AttackSec: 0.01, DecaySec: 0.1, SustainLvl: 0.7, ReleaseSec: 0.3, VelocitySens: 0},
		FilterEnv:           EnvConfig{AttackSec: 0.01, DecaySec: 0.2, SustainLvl: 0.5, ReleaseSec: 0.3, VelocitySens: 0.5},
		PitchEnv:            EnvConfig{AttackSec: 0.01, DecaySec: 0.1, SustainLvl: 0, ReleaseSec: 0.1, VelocitySens: 0},
		PitchEnvSemis:       0,
		EnvCurve:            CurveExponential,
		PhaseResetOnTrigger: true,
		MasterVolume:        0.7,
		PitchBendRange:      2,
		Tempo:               120,
	}
}

// Engine owns the voice pool and everything that runs on the audio thread:
// allocation and stealing, the global LFOs, the modulation matrix, the
// arpeggiator, the limiter and soft clip. ProcessBlock is the only entry
// point the audio thread uses; all other mutation must arrive through the
// parameter queue or happen before processing starts.
type Engine struct {
	sampleRate float64
	voices     []Voice
	noise      noiseRNG

	lfos   [NumLFOs]*lfo.LFO
	matrix ModMatrix
	arp    arpeggiator

	// Runtime parameters, written only by the audio thread (via queue
	// drain) and read by control-thread getters; torn reads are accepted
	// for display values.
	masterVolume    float64
	masterTuneCents float64
	tempo           float64
	filterCutoff    float64
	filterResonance float64
	filterEnvAmount float64
	osc2DetuneCents float64
	pitchEnvSemis   float64
	pitchBend       float64 // -1..1
	pitchBendRange  int
	modWheel        float64
	aftertouch      float64
	phaseReset      bool
	mono            bool
	legato          bool
	glideTime       float64

	limiterThreshold float64
	limiterRelease   float64
	limiterGain      float64

	sampleCounter uint64

	// Block meter, polled by the control thread.
	meterPeak float64
	meterRMS  float64
}

// New constructs an engine with all pools pre-sized; nothing allocates after
// this point on the audio path.
func New(sampleRate int, cfg Config) *Engine {
	if cfg.Polyphony <= 0 {
		cfg.Polyphony = DefaultVoices
	}
	if cfg.Polyphony > MaxVoices {
		cfg.Polyphony = MaxVoices
	}
	seed := cfg.NoiseSeed
	if seed == 0 {
		seed = 0x9E3779B9
	}
	e := &Engine{
		sampleRate:       float64(sampleRate),
		voices:           make([]Voice, cfg.Polyphony),
		noise:            noiseRNG{state: seed},
		masterVolume:     clamp(cfg.MasterVolume, 0, 1),
		masterTuneCents:  clamp(cfg.MasterTuneCents, -100, 100),
		tempo:            clamp(cfg.Tempo, 20, 300),
		filterCutoff:     clamp(cfg.FilterCutoff, minCutoffHz, maxCutoffHz),
		filterResonance:  clamp(cfg.FilterResonance, 0, 1),
		filterEnvAmount:  clamp(cfg.FilterEnvAmount, -1, 1),
		osc2DetuneCents:  cfg.Osc2DetuneCents,
		pitchEnvSemis:    cfg.PitchEnvSemis,
		pitchBendRange:   cfg.PitchBendRange,
		phaseReset:       cfg.PhaseResetOnTrigger,
		mono:             cfg.Mono,
		legato:           cfg.Legato,
		glideTime:        math.Max(0, cfg.GlideTime),
		limiterThreshold: 0.95,
		limiterRelease:   0.1,
		limiterGain:      1.0,
	}
	if e.pitchBendRange <= 0 {
		e.pitchBendRange = 2
	}
	for i := range e.voices {
		v := &e.voices[i]
		v.init(&e.noise)
		applyOscConfig(&v.osc1, cfg.Osc1)
		applyOscConfig(&v.osc2, cfg.Osc2)
		v.filter.SetMode(cfg.FilterMode)
		applyEnvConfig(&v.ampEnv, cfg.AmpEnv, cfg.EnvCurve)
		applyEnvConfig(&v.filterEnv, cfg.FilterEnv, cfg.EnvCurve)
		applyEnvConfig(&v.pitchEnv, cfg.PitchEnv, cfg.EnvCurve)
		v.glideTime = e.glideTime
	}
	for i := range e.lfos {
		e.lfos[i] = lfo.New(lfo.WaveTriangle, 2.0, 0)
	}
	e.arp.init()
	return e
}

func applyOscConfig(o *Oscillator, cfg OscConfig) {
	o.Waveform = cfg.Waveform
	o.PulseWidth = clamp(cfg.PulseWidth, 0.05, 0.95)
	o.Unison = clampInt(cfg.Unison, 1, MaxUnison)
	o.DetuneCents = cfg.DetuneCents
}

func applyEnvConfig(env *Envelope, cfg EnvConfig, curve CurveKind) {
	env.AttackSec = math.Max(0.0005, cfg.AttackSec)
	env.DecaySec = math.Max(0.0005, cfg.DecaySec)
	env.SustainLvl = clamp(cfg.SustainLvl, 0, 1)
	env.ReleaseSec = math.Max(0.0005, cfg.ReleaseSec)
	env.VelocitySens = clamp(cfg.VelocitySens, 0, 1)
	env.Curve = curve
}

// SampleRate returns the fixed processing rate in Hz.
func (e *Engine) SampleRate() float64 { return e.sampleRate }

// SampleCounter returns the monotonic count of frames processed so far.
func (e *Engine) SampleCounter() uint64 { return e.sampleCounter }

// NoteOn triggers a note. With the arpeggiator enabled the note joins the
// held set instead of sounding directly.
func (e *Engine) NoteOn(note int, velocity float64) {
	note = clampInt(note, 0, 127)
	velocity = clamp(velocity, 0, 1)
	if e.arp.enabled {
		e.arp.hold(note, velocity)
		return
	}
	e.triggerNote(note, velocity)
}

// NoteOff releases every voice sounding the note. Calling it twice for the
// same note is equivalent to calling it once.
func (e *Engine) NoteOff(note int) {
	if e.arp.enabled {
		e.arp.unhold(note, e)
		return
	}
	e.releaseNote(note)
}

func (e *Engine) releaseNote(note int) {
	for i := range e.voices {
		v := &e.voices[i]
		if v.active() && v.note == note {
			v.noteOff()
		}
	}
}

// AllNotesOff releases every sounding voice (panic).
func (e *Engine) AllNotesOff() {
	for i := range e.voices {
		if e.voices[i].active() {
			e.voices[i].noteOff()
		}
	}
	e.arp.flush()
}

func (e *Engine) triggerNote(note int, velocity float64) {
	if e.mono {
		v := &e.voices[0]
		if e.legato && v.active() {
			v.legatoTo(note)
		} else {
			v.glideTime = e.glideTime
			v.noteOn(note, velocity, e.sampleCounter, e.phaseReset, &e.noise)
		}
		return
	}
	slot, stolen := e.allocateVoice(note)
	v := &e.voices[slot]
	if stolen {
		v.forceOff()
	}
	v.glideTime = e.glideTime
	v.noteOn(note, velocity, e.sampleCounter, e.phaseReset, &e.noise)
	for i := range e.lfos {
		e.lfos[i].Trigger()
	}
}

// allocateVoice implements the steal policy: retrigger a voice already
// holding the note, else claim the lowest free slot, else steal the oldest
// voice by trigger time (ties to the lowest index). O(N) over a small fixed
// pool, allocation-free.
func (e *Engine) allocateVoice(note int) (slot int, stolen bool) {
	for i := range e.voices {
		if e.voices[i].active() && e.voices[i].note == note {
			return i, false
		}
	}
	for i := range e.voices {
		if !e.voices[i].active() {
			return i, false
		}
	}
	oldest := 0
	for i := 1; i < len(e.voices); i++ {
		if e.voices[i].onTime < e.voices[oldest].onTime {
			oldest = i
		}
	}
	return oldest, true
}

// ActiveVoiceCount reports how many voices are sounding in any stage.
func (e *Engine) ActiveVoiceCount() int {
	n := 0
	for i := range e.voices {
		if e.voices[i].active() {
			n++
		}
	}
	return n
}

// VoiceState exposes one slot's lifecycle for tests and displays.
func (e *Engine) VoiceState(slot int) VoiceState {
	if slot < 0 || slot >= len(e.voices) {
		return VoiceOff
	}
	return e.voices[slot].State()
}

// VoiceNote returns the note a slot currently holds.
func (e *Engine) VoiceNote(slot int) int {
	if slot < 0 || slot >= len(e.voices) {
		return -1
	}
	return e.voices[slot].note
}

// PitchBend applies a bend of amount in [-1,1] scaled by the bend range.
func (e *Engine) PitchBend(amount float64) {
	e.pitchBend = clamp(amount, -1, 1)
}

// SetModWheel feeds the SrcModWheel modulation source, 0..1.
func (e *Engine) SetModWheel(v float64) { e.modWheel = clamp(v, 0, 1) }

// SetAftertouch feeds the SrcAftertouch modulation source, 0..1.
func (e *Engine) SetAftertouch(v float64) { e.aftertouch = clamp(v, 0, 1) }

// LFO returns one of the global LFOs for configuration.
func (e *Engine) LFO(i int) *lfo.LFO {
	return e.lfos[clampInt(i, 0, NumLFOs-1)]
}

// Matrix returns the modulation matrix for routing setup.
func (e *Engine) Matrix() *ModMatrix { return &e.matrix }

// --- runtime parameter setters / getters -------------------------------

// Invalid values clamp to the nearest legal value; the audio path must keep
// producing sound (no hard failures).

func (e *Engine) SetMasterVolume(v float64) { e.masterVolume = clamp(v, 0, 1) }
func (e *Engine) MasterVolume() float64     { return e.masterVolume }

func (e *Engine) SetMasterTune(cents float64) { e.masterTuneCents = clamp(cents, -100, 100) }
func (e *Engine) MasterTune() float64         { return e.masterTuneCents }

func (e *Engine) SetTempo(bpm float64) { e.tempo = clamp(bpm, 20, 300) }
func (e *Engine) Tempo() float64       { return e.tempo }

func (e *Engine) SetFilterCutoff(hz float64) {
	e.filterCutoff = clamp(hz, minCutoffHz, math.Min(maxCutoffHz, e.sampleRate*0.45))
}
func (e *Engine) FilterCutoff() float64 { return e.filterCutoff }

func (e *Engine) SetFilterResonance(r float64) { e.filterResonance = clamp(r, 0, 1) }
func (e *Engine) FilterResonance() float64     { return e.filterResonance }

func (e *Engine) SetFilterMode(mode FilterMode) {
	for i := range e.voices {
		e.voices[i].filter.SetMode(mode)
	}
}
func (e *Engine) FilterMode() FilterMode { return e.voices[0].filter.Mode() }

func (e *Engine) SetFilterEnvAmount(a float64) { e.filterEnvAmount = clamp(a, -1, 1) }
func (e *Engine) FilterEnvAmount() float64     { return e.filterEnvAmount }

// SetAmpEnvelope updates the pool's amplitude envelope times. Sounding
// envelopes pick the new values up on their next sample.
func (e *Engine) SetAmpEnvelope(attack, decay, sustain, release float64) {
	for i := range e.voices {
		env := &e.voices[i].ampEnv
		env.AttackSec = clamp(attack, 0.001, 10)
		env.DecaySec = clamp(decay, 0.001, 10)
		env.SustainLvl = clamp(sustain, 0, 1)
		env.ReleaseSec = clamp(release, 0.001, 10)
	}
}

// AmpEnvelope reports the current amplitude ADSR values.
func (e *Engine) AmpEnvelope() (attack, decay, sustain, release float64) {
	env := &e.voices[0].ampEnv
	return env.AttackSec, env.DecaySec, env.SustainLvl, env.ReleaseSec
}

// SetOscillator reconfigures oscillator slot 1 or 2 across the pool.
func (e *Engine) SetOscillator(slot int, cfg OscConfig) {
	for i := range e.voices {
		if slot == 2 {
			applyOscConfig(&e.voices[i].osc2, cfg)
		} else {
			applyOscConfig(&e.voices[i].osc1, cfg)
		}
	}
}

// SetGlide sets portamento time in seconds per octave (0 disables).
func (e *Engine) SetGlide(seconds float64) {
	e.glideTime = math.Max(0, seconds)
	for i := range e.voices {
		e.voices[i].glideTime = e.glideTime
	}
}

// SetMonoMode switches between polyphonic and mono/legato behavior.
func (e *Engine) SetMonoMode(mono, legato bool) {
	e.mono = mono
	e.legato = legato
}

// SetPhaseReset selects the oscillator retrigger policy.
func (e *Engine) SetPhaseReset(reset bool) { e.phaseReset = reset }

// Meter returns the previous block's output peak and RMS. Written only by
// the audio thread; the torn-read risk on these display values is accepted.
func (e *Engine) Meter() (peak, rms float64) { return e.meterPeak, e.meterRMS }

// ApplyChange routes one queued parameter change. Unknown types are ignored;
// the audio path never rejects, it clamps.
func (e *Engine) ApplyChange(c params.Change) {
	switch c.Type {
	case params.MasterVolume:
		e.SetMasterVolume(c.Value)
	case params.MasterTune:
		e.SetMasterTune(c.Value)
	case params.Tempo:
		e.SetTempo(c.Value)
	case params.FilterCutoff:
		e.SetFilterCutoff(c.Value)
	case params.FilterResonance:
		e.SetFilterResonance(c.Value)
	case params.FilterMode:
		e.SetFilterMode(FilterMode(int(c.Value)))
	case params.FilterEnvAmount:
		e.SetFilterEnvAmount(c.Value)
	case params.EnvAttack:
		_, d, s, r := e.AmpEnvelope()
		e.SetAmpEnvelope(c.Value, d, s, r)
	case params.EnvDecay:
		a, _, s, r := e.AmpEnvelope()
		e.SetAmpEnvelope(a, c.Value, s, r)
	case params.EnvSustain:
		a, d, _, r := e.AmpEnvelope()
		e.SetAmpEnvelope(a, d, c.Value, r)
	case params.EnvRelease:
		a, d, s, _ := e.AmpEnvelope()
		e.SetAmpEnvelope(a, d, s, c.Value)
	case params.PitchBend:
		e.PitchBend(c.Value)
	case params.ModWheel:
		e.SetModWheel(c.Value)
	case params.Aftertouch:
		e.SetAftertouch(c.Value)
	case params.ArpEnabled:
		e.arp.setEnabled(c.Value >= 0.5, e)
	case params.ArpRate:
		e.arp.setRate(c.Value)
	case params.ArpMode:
		e.arp.setMode(ArpMode(int(c.Value)))
	case params.Panic:
		e.AllNotesOff()
	}
}

// ProcessBlock renders len(dst)/2 interleaved stereo frames. It is called
// from the audio thread only, after the parameter queue has been drained for
// this block. No allocation, locking or I/O happens here.
func (e *Engine) ProcessBlock(dst []float32) {
	frames := len(dst) / 2
	var sumSquares float64
	var blockPeak float64

	for fr := 0; fr < frames; fr++ {
		e.arp.tick(e)

		var src modSources
		for i := range e.lfos {
			src[SrcLFO1+ModSource(i)] = e.lfos[i].Sample(e.sampleRate, e.tempo)
		}
		src[SrcModWheel] = e.modWheel
		src[SrcAftertouch] = e.aftertouch
		src[SrcRandom] = e.noise.next()

		var l, r float64
		active := 0
		for i := range e.voices {
			v := &e.voices[i]
			if !v.active() {
				continue
			}
			vl, vr := v.process(e, &src)
			l += vl
			r += vr
			active++
		}
		if active > 1 {
			// Energy-preserving mixdown.
			s := 1.0 / math.Sqrt(float64(active))
			l *= s
			r *= s
		}

		l *= e.masterVolume
		r *= e.masterVolume

		// Limiter: instant attack, exponential release.
		peak := math.Max(math.Abs(l), math.Abs(r))
		if peak > e.limiterThreshold {
			if target := e.limiterThreshold / peak; target < e.limiterGain {
				e.limiterGain = target
			}
		} else {
			rc := 1.0 - math.Exp(-1.0/(e.limiterRelease*e.sampleRate))
			e.limiterGain += (1.0 - e.limiterGain) * rc
		}
		l *= e.limiterGain
		r *= e.limiterGain

		l = softClip(l)
		r = softClip(r)

		dst[fr*2] = float32(l)
		dst[fr*2+1] = float32(r)

		if a := math.Max(math.Abs(l), math.Abs(r)); a > blockPeak {
			blockPeak = a
		}
		sumSquares += l*l + r*r
		e.sampleCounter++
	}

	e.meterPeak = blockPeak
	if frames > 0 {
		e.meterRMS = math.Sqrt(sumSquares / float64(frames*2))
	}
}

// softClip keeps the output inside [-1,1] with a tanh knee instead of a hard
// digital edge.
func softClip(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return math.Tanh(x*1.5) / math.Tanh(1.5)
}
