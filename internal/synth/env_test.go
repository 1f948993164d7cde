package synth

import (
	"math"
	"testing"
)

const testRate = 48000.0

func TestEnvelopeStageOrder(t *testing.T) {
	env := Envelope{AttackSec: 0.01, DecaySec: 0.02, SustainLvl: 0.5, ReleaseSec: 0.05, Curve: CurveLinear}
	env.Trigger(1.0)
	if env.Stage() != StageAttack {
		t.Fatalf("after trigger: stage = %v, want attack", env.Stage())
	}

	seen := map[EnvStage]bool{}
	for i := 0; i < int(0.1*testRate); i++ {
		env.Process(testRate)
		seen[env.Stage()] = true
	}
	if !seen[StageDecay] || !seen[StageSustain] {
		t.Errorf("expected decay and sustain stages, saw %v", seen)
	}
	if env.Level() != env.SustainLvl {
		t.Errorf("sustain level = %f, want %f", env.Level(), env.SustainLvl)
	}

	env.Release()
	for i := 0; i < int(0.1*testRate); i++ {
		env.Process(testRate)
	}
	if env.Active() {
		t.Error("envelope still active after full release")
	}
}

func TestEnvelopeAttackCrossingWindow(t *testing.T) {
	// attack 0.5s, sustain 0.8, release 2.0s: the 60%-of-peak crossing must
	// land between ~0.2s and ~0.7s for the default exponential curve.
	env := Envelope{AttackSec: 0.5, DecaySec: 0.1, SustainLvl: 0.8, ReleaseSec: 2.0}
	env.Trigger(1.0)

	crossing := -1.0
	peak := 0.0
	for i := 0; i < int(1.0*testRate); i++ {
		v := env.Process(testRate)
		if v > peak {
			peak = v
		}
		if crossing < 0 && v >= 0.6 {
			crossing = float64(i) / testRate
		}
	}
	if math.Abs(peak-1.0) > 1e-6 {
		t.Errorf("attack peak = %f, want 1.0", peak)
	}
	if crossing < 0.2 || crossing > 0.7 {
		t.Errorf("60%% crossing at %.3fs, want within [0.2, 0.7]", crossing)
	}
}

func TestEnvelopeReleaseHoldsThenZeroes(t *testing.T) {
	env := Envelope{AttackSec: 0.01, DecaySec: 0.05, SustainLvl: 0.8, ReleaseSec: 2.0}
	env.Trigger(1.0)
	for i := 0; i < int(0.5*testRate); i++ {
		env.Process(testRate)
	}
	env.Release()

	var atNearEnd float64
	for i := 0; i < int(2.5*testRate); i++ {
		v := env.Process(testRate)
		elapsed := float64(i) / testRate
		if elapsed < 1.9 && v < 0.1 {
			t.Fatalf("release dropped below 10%% of peak at %.2fs", elapsed)
		}
		if math.Abs(elapsed-1.95) < 0.5/testRate {
			atNearEnd = v
		}
	}
	if atNearEnd < 0.1 {
		t.Errorf("level at 1.95s = %f, want >= 0.1", atNearEnd)
	}
	if env.Active() || env.Level() != 0 {
		t.Errorf("envelope not silent after release elapsed: active=%v level=%f", env.Active(), env.Level())
	}
}

func TestEnvelopeReleaseStartsFromHeldLevel(t *testing.T) {
	env := Envelope{AttackSec: 1.0, DecaySec: 0.1, SustainLvl: 0.5, ReleaseSec: 0.5, Curve: CurveLinear}
	env.Trigger(1.0)
	// Release mid-attack, well below peak.
	for i := 0; i < int(0.3*testRate); i++ {
		env.Process(testRate)
	}
	held := env.Level()
	env.Release()
	first := env.Process(testRate)
	if first > held+0.01 {
		t.Errorf("release jumped up: held %f, first release sample %f", held, first)
	}
}

func TestEnvelopeRedundantReleaseIgnored(t *testing.T) {
	env := Envelope{AttackSec: 0.01, DecaySec: 0.05, SustainLvl: 0.8, ReleaseSec: 1.0}
	env.Trigger(1.0)
	for i := 0; i < int(0.2*testRate); i++ {
		env.Process(testRate)
	}
	env.Release()
	for i := 0; i < int(0.5*testRate); i++ {
		env.Process(testRate)
	}
	mid := env.Level()
	env.Release() // must not restart the ramp
	after := env.Process(testRate)
	if after > mid {
		t.Errorf("second release restarted ramp: %f -> %f", mid, after)
	}
}

func TestEnvelopeVelocitySensitivityScalesPeak(t *testing.T) {
	env := Envelope{AttackSec: 0.01, DecaySec: 0.05, SustainLvl: 1.0, ReleaseSec: 0.1, VelocitySens: 1.0, Curve: CurveLinear}
	env.Trigger(0.5)
	var peak float64
	for i := 0; i < int(0.1*testRate); i++ {
		if v := env.Process(testRate); v > peak {
			peak = v
		}
	}
	if math.Abs(peak-0.5) > 0.01 {
		t.Errorf("velocity-scaled peak = %f, want ~0.5", peak)
	}
}
