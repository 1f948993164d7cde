package synth

import "math"

// VoiceState is the lifecycle of one pooled voice. It mirrors the amplitude
// envelope: a voice is active in every state except VoiceOff.
type VoiceState int

const (
	VoiceOff VoiceState = iota
	VoiceAttack
	VoiceDecay
	VoiceSustain
	VoiceRelease
)

// Modulation scaling per destination unit depth.
const (
	pitchModCents  = 100.0   // ±1 semitone
	cutoffModHz    = 8000.0  // Hz-equivalent offset
	pulseWidthSpan = 0.45    // offset around the configured duty cycle
)

// Voice is one monophonic synthesis unit: two oscillators into a state
// variable filter, shaped by amplitude/filter/pitch envelopes. Voices live in
// the engine's fixed pool and are identified by slot index; "ownership" is
// just being the current claimant of that slot.
type Voice struct {
	note     int
	velocity float64
	onTime   uint64 // engine sample counter at trigger; steals pick the minimum

	osc1, osc2 Oscillator
	filter     Filter
	ampEnv     Envelope
	filterEnv  Envelope
	pitchEnv   Envelope

	pan         float64
	randomValue float64 // drawn once per trigger, for SrcRandom-like held use

	targetFreq  float64
	currentFreq float64 // differs from target while gliding
	glideTime   float64 // seconds per octave, 0 = jump
}

func (v *Voice) init(noise *noiseRNG) {
	v.osc1.init(noise)
	v.osc2.init(noise)
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.pitchEnv.Reset()
}

// State derives the lifecycle state from the amplitude envelope.
func (v *Voice) State() VoiceState {
	switch v.ampEnv.Stage() {
	case StageAttack:
		return VoiceAttack
	case StageDecay:
		return VoiceDecay
	case StageSustain:
		return VoiceSustain
	case StageRelease:
		return VoiceRelease
	default:
		return VoiceOff
	}
}

func (v *Voice) active() bool { return v.ampEnv.Active() }

// noteOn claims the voice for a note. Stage timers restart; oscillator phase
// obeys the engine policy (reset for a clean transient, continue for
// click-free legato retriggers).
func (v *Voice) noteOn(note int, velocity float64, when uint64, resetPhase bool, rng *noiseRNG) {
	v.note = note
	v.velocity = clamp(velocity, 0, 1)
	v.onTime = when
	v.targetFreq = midiToFreq(note)
	if v.glideTime <= 0 || !v.active() {
		v.currentFreq = v.targetFreq
	}
	if resetPhase {
		v.osc1.ResetPhase()
		v.osc2.ResetPhase()
	}
	v.randomValue = rng.next()
	v.ampEnv.Trigger(v.velocity)
	v.filterEnv.Trigger(v.velocity)
	v.pitchEnv.Trigger(v.velocity)
}

// legatoTo changes pitch without retriggering envelopes (mono legato mode).
func (v *Voice) legatoTo(note int) {
	v.note = note
	v.targetFreq = midiToFreq(note)
	if v.glideTime <= 0 {
		v.currentFreq = v.targetFreq
	}
}

// noteOff releases the voice. Already-releasing and idle voices ignore it.
func (v *Voice) noteOff() {
	v.ampEnv.Release()
	v.filterEnv.Release()
	v.pitchEnv.Release()
}

// forceOff is the voice-steal path: an immediate cut, no crossfade.
func (v *Voice) forceOff() {
	v.ampEnv.Reset()
	v.filterEnv.Reset()
	v.pitchEnv.Reset()
}

// process renders one stereo sample. src carries the engine's global
// modulation sources; the voice overwrites its per-voice slots before folding
// the matrix. Returns (0,0) once the amplitude envelope finishes.
func (v *Voice) process(e *Engine, src *modSources) (float64, float64) {
	if !v.active() {
		return 0, 0
	}

	amp := v.ampEnv.Process(e.sampleRate)
	fenv := v.filterEnv.Process(e.sampleRate)
	penv := v.pitchEnv.Process(e.sampleRate)
	if !v.ampEnv.Active() {
		return 0, 0
	}

	src[SrcEnvAmp] = amp
	src[SrcEnvFilter] = fenv
	src[SrcEnvPitch] = penv
	src[SrcVelocity] = v.velocity
	src[SrcKeyTrack] = clamp(float64(v.note-60)/36.0, -1, 1)

	var dst modDests
	e.matrix.fold(src, &dst)

	v.advanceGlide(e.sampleRate)

	// Pitch: master tune, bend and pitch envelope sum in cents; the matrix
	// contribution is applied per oscillator below.
	cents := e.masterTuneCents +
		e.pitchBend*float64(e.pitchBendRange)*100 +
		penv*e.pitchEnvSemis*100
	baseFreq := v.currentFreq * centsToRatio(cents)

	freq1 := baseFreq * centsToRatio(dst[DestOsc1Pitch]*pitchModCents)
	freq2 := baseFreq * centsToRatio(dst[DestOsc2Pitch]*pitchModCents+e.osc2DetuneCents)

	pw1 := clamp(v.osc1.PulseWidth+dst[DestOsc1PulseWidth]*pulseWidthSpan, 0.05, 0.95)
	pw2 := clamp(v.osc2.PulseWidth+dst[DestOsc2PulseWidth]*pulseWidthSpan, 0.05, 0.95)

	mixed := (v.osc1.Process(freq1, pw1, e.sampleRate) +
		v.osc2.Process(freq2, pw2, e.sampleRate)) * 0.5

	// Filter: envelope scales cutoff multiplicatively (up to +10x), the
	// matrix adds a Hz offset. Clamping happens inside Process.
	cutoff := e.filterCutoff * (1.0 + fenv*e.filterEnvAmount*10.0)
	cutoff += dst[DestFilterCutoff] * cutoffModHz
	resonance := e.filterResonance + dst[DestFilterResonance]
	filtered := v.filter.Process(mixed, cutoff, resonance, e.sampleRate)

	gain := amp * v.velocity * math.Max(0, 1.0+dst[DestAmp])
	out := filtered * gain

	pan := clamp(v.pan+dst[DestPan], -1, 1)
	angle := (pan + 1.0) * 0.25 * math.Pi
	return out * math.Cos(angle), out * math.Sin(angle)
}

func (v *Voice) advanceGlide(sampleRate float64) {
	if v.currentFreq == v.targetFreq {
		return
	}
	if v.glideTime <= 0 {
		v.currentFreq = v.targetFreq
		return
	}
	step := 12.0 / (v.glideTime * sampleRate) // semitones per sample
	if v.currentFreq < v.targetFreq {
		v.currentFreq *= math.Pow(2, step/12.0)
		if v.currentFreq >= v.targetFreq {
			v.currentFreq = v.targetFreq
		}
	} else {
		v.currentFreq *= math.Pow(2, -step/12.0)
		if v.currentFreq <= v.targetFreq {
			v.currentFreq = v.targetFreq
		}
	}
}
