package effects

import "math"

// Distortion is a tanh waveshaper with a dry/wet blend. Drive pushes the
// signal further into the saturating region; at mix 0 the slot is transparent
// even while enabled.
type Distortion struct {
	enabled bool
	drive   float32
	mix     float32
}

// NewDistortion creates the shaper. Drive is clamped to [1, 50], mix to [0, 1].
func NewDistortion(drive, mix float64) *Distortion {
	d := &Distortion{}
	d.SetDrive(drive)
	d.SetMix(mix)
	return d
}

func (d *Distortion) SetEnabled(on bool) { d.enabled = on }
func (d *Distortion) Enabled() bool      { return d.enabled }

func (d *Distortion) SetDrive(v float64) { d.drive = clamp(float32(v), 1, 50) }
func (d *Distortion) Drive() float64     { return float64(d.drive) }

func (d *Distortion) SetMix(v float64) { d.mix = clamp(float32(v), 0, 1) }
func (d *Distortion) Mix() float64     { return float64(d.mix) }

func (d *Distortion) Process(l, r float32) (float32, float32) {
	if !d.enabled {
		return l, r
	}
	return d.shape(l), d.shape(r)
}

func (d *Distortion) shape(s float32) float32 {
	wet := float32(math.Tanh(float64(s * d.drive)))
	return s + (wet-s)*d.mix
}

// Reset is a no-op; the shaper is stateless.
func (d *Distortion) Reset() {}
