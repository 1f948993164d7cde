package effects

import "github.com/cbegin/subsynth-go/internal/params"

// Effector processes one stereo sample pair. A disabled effector passes audio
// through untouched but keeps its internal state (a muted delay still carries
// its tail when re-enabled).
type Effector interface {
	Process(l, r float32) (float32, float32)
	Reset()
	SetEnabled(on bool)
	Enabled() bool
}

// Rack is the fixed post-engine effect chain: distortion into delay into
// reverb. The order is part of the sound and never changes; individual slots
// toggle on and off instead.
type Rack struct {
	distortion *Distortion
	delay      *Delay
	reverb     *Reverb
	chain      [3]Effector
}

// NewRack builds the chain with every slot disabled.
func NewRack(sampleRate int) *Rack {
	r := &Rack{
		distortion: NewDistortion(4, 0.5),
		delay:      NewDelay(sampleRate),
		reverb:     NewReverb(sampleRate),
	}
	r.chain = [3]Effector{r.distortion, r.delay, r.reverb}
	return r
}

// Distortion returns the first slot for direct configuration.
func (r *Rack) Distortion() *Distortion { return r.distortion }

// Delay returns the second slot.
func (r *Rack) Delay() *Delay { return r.delay }

// Reverb returns the third slot.
func (r *Rack) Reverb() *Reverb { return r.reverb }

// Process runs one stereo sample through the enabled slots in order.
func (r *Rack) Process(l, rt float32) (float32, float32) {
	for _, e := range r.chain {
		l, rt = e.Process(l, rt)
	}
	return l, rt
}

// ProcessBlock runs an interleaved stereo buffer through the chain in place.
func (r *Rack) ProcessBlock(buf []float32) {
	for i := 0; i+1 < len(buf); i += 2 {
		buf[i], buf[i+1] = r.Process(buf[i], buf[i+1])
	}
}

// Reset clears every slot's internal buffers.
func (r *Rack) Reset() {
	for _, e := range r.chain {
		e.Reset()
	}
}

// ApplyChange routes one queued parameter change into the rack. It reports
// whether the change addressed an effect parameter; anything else belongs to
// the voice engine.
func (r *Rack) ApplyChange(c params.Change) bool {
	switch c.Type {
	case params.DistortionEnabled:
		r.distortion.SetEnabled(c.Value >= 0.5)
	case params.DistortionDrive:
		r.distortion.SetDrive(c.Value)
	case params.DistortionMix:
		r.distortion.SetMix(c.Value)
	case params.DelayEnabled:
		r.delay.SetEnabled(c.Value >= 0.5)
	case params.DelayTime:
		r.delay.SetTime(c.Value)
	case params.DelayFeedback:
		r.delay.SetFeedback(c.Value)
	case params.DelayMix:
		r.delay.SetMix(c.Value)
	case params.DelayFreeze:
		r.delay.SetFreeze(c.Value >= 0.5)
	case params.ReverbEnabled:
		r.reverb.SetEnabled(c.Value >= 0.5)
	case params.ReverbSize:
		r.reverb.SetSize(c.Value)
	case params.ReverbDamping:
		r.reverb.SetDamping(c.Value)
	case params.ReverbMix:
		r.reverb.SetMix(c.Value)
	default:
		return false
	}
	return true
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
