package synth

import "math"

// EnvStage is the ADSR state machine position.
type EnvStage int

const (
	StageOff EnvStage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

// CurveKind selects the envelope ramp shape.
type CurveKind int

const (
	// CurveExponential is the default: a slow-start attack and decaying
	// approach toward targets, which tracks perceived loudness more evenly
	// than straight lines.
	CurveExponential CurveKind = iota
	CurveLinear
)

// envCurveK is the curvature constant for exponential stages. At k=2 a
// release still holds ~13% of its start level when the stage time elapses;
// the value is then clipped to the target.
const envCurveK = 2.0

// Envelope is an ADSR generator producing a [0,1] multiplier per sample.
// Stage progress is tracked in elapsed seconds, not frames, so the shape is
// sample-rate independent. Release always starts from the level the envelope
// actually held, never from peak.
type Envelope struct {
	AttackSec  float64
	DecaySec   float64
	SustainLvl float64 // 0..1
	ReleaseSec float64
	Curve      CurveKind

	// VelocitySens scales the attack peak toward the trigger velocity:
	// 0 = ignore velocity, 1 = peak equals velocity.
	VelocitySens float64

	stage      EnvStage
	stageTime  float64 // seconds elapsed in the current stage
	level      float64 // last output
	stageStart float64 // level at stage entry
	peak       float64 // attack target after velocity scaling
}

// Trigger starts (or restarts) the attack stage from the current level, so
// retriggering a sounding voice never clicks back to zero.
func (e *Envelope) Trigger(velocity float64) {
	e.peak = lerp(1.0, clamp(velocity, 0, 1), clamp(e.VelocitySens, 0, 1))
	if e.peak <= 0 {
		e.peak = 0.001
	}
	e.stage = StageAttack
	e.stageTime = 0
	e.stageStart = e.level
}

// Release moves any sounding stage into the release ramp. Redundant calls
// while already releasing (or off) are ignored.
func (e *Envelope) Release() {
	if e.stage == StageRelease || e.stage == StageOff {
		return
	}
	e.stage = StageRelease
	e.stageTime = 0
	e.stageStart = e.level
}

// Reset forces the envelope silent immediately.
func (e *Envelope) Reset() {
	e.stage = StageOff
	e.stageTime = 0
	e.level = 0
	e.stageStart = 0
}

// Active reports whether the envelope still produces output.
func (e *Envelope) Active() bool { return e.stage != StageOff }

// Stage returns the current ADSR stage.
func (e *Envelope) Stage() EnvStage { return e.stage }

// Level returns the last produced value without advancing.
func (e *Envelope) Level() float64 { return e.level }

// Process advances the envelope by one sample and returns its output in [0,1].
func (e *Envelope) Process(sampleRate float64) float64 {
	if e.stage == StageOff || sampleRate <= 0 {
		e.level = 0
		return 0
	}
	dt := 1.0 / sampleRate
	e.stageTime += dt

	switch e.stage {
	case StageAttack:
		dur := e.AttackSec
		if dur <= 0 || e.stageTime >= dur {
			e.level = e.peak
			e.enter(StageDecay)
			break
		}
		e.level = e.stageStart + (e.peak-e.stageStart)*e.rampUp(e.stageTime/dur)

	case StageDecay:
		target := e.sustainTarget()
		dur := e.DecaySec
		if dur <= 0 || e.stageTime >= dur {
			e.level = target
			e.enter(StageSustain)
			break
		}
		e.level = e.approach(e.stageStart, target, e.stageTime/dur)

	case StageSustain:
		e.level = e.sustainTarget()

	case StageRelease:
		dur := e.ReleaseSec
		if dur <= 0 || e.stageTime >= dur {
			e.level = 0
			e.stage = StageOff
			break
		}
		e.level = e.approach(e.stageStart, 0, e.stageTime/dur)
	}

	e.level = clamp(e.level, 0, 1)
	return e.level
}

func (e *Envelope) enter(stage EnvStage) {
	e.stage = stage
	e.stageTime = 0
	e.stageStart = e.level
}

func (e *Envelope) sustainTarget() float64 {
	return clamp(e.SustainLvl, 0, 1) * e.peak
}

// rampUp maps stage progress x in [0,1) to [0,1).
func (e *Envelope) rampUp(x float64) float64 {
	if e.Curve == CurveLinear {
		return x
	}
	return (math.Exp(envCurveK*x) - 1) / (math.Exp(envCurveK) - 1)
}

// approach decays from start toward target; the exponential variant still
// holds a residual when x reaches 1 and is clipped to the target there.
func (e *Envelope) approach(start, target, x float64) float64 {
	if e.Curve == CurveLinear {
		return start + (target-start)*x
	}
	return target + (start-target)*math.Exp(-envCurveK*x)
}
