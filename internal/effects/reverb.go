package effects

// Reverb comb tap range in seconds; size 0..1 interpolates between them.
const (
	reverbMinTapSec = 0.01
	reverbMaxTapSec = 0.1
)

// Reverb is a single comb filter on the mono sum. Size stretches the comb
// tap, damping is the loop feedback gain so it sets the decay time (0 leaves
// a single echo, higher values ring longer), and mix blends the comb output
// back into both channels.
type Reverb struct {
	enabled bool

	buf       []float32
	pos       int
	tapOffset int
	damping   float32
	mix       float32

	sampleRate int
}

// NewReverb creates the comb sized for the maximum tap, with a medium room.
func NewReverb(sampleRate int) *Reverb {
	r := &Reverb{
		buf:        make([]float32, int(reverbMaxTapSec*float64(sampleRate))+1),
		sampleRate: sampleRate,
	}
	r.SetSize(0.5)
	r.SetDamping(0.4)
	r.SetMix(0.3)
	return r
}

func (r *Reverb) SetEnabled(on bool) { r.enabled = on }
func (r *Reverb) Enabled() bool      { return r.enabled }

// SetSize maps 0..1 onto the comb tap range. The buffer is pre-sized for the
// longest tap, so resizing mid-tail keeps the buffered sound.
func (r *Reverb) SetSize(v float64) {
	s := clamp(float32(v), 0, 1)
	sec := reverbMinTapSec + float64(s)*(reverbMaxTapSec-reverbMinTapSec)
	n := int(sec * float64(r.sampleRate))
	if n < 1 {
		n = 1
	}
	if n >= len(r.buf) {
		n = len(r.buf) - 1
	}
	r.tapOffset = n
}

// SetDamping clamps to [0, 0.98]; unity feedback would never decay.
func (r *Reverb) SetDamping(v float64) { r.damping = clamp(float32(v), 0, 0.98) }
func (r *Reverb) Damping() float64     { return float64(r.damping) }

func (r *Reverb) SetMix(v float64) { r.mix = clamp(float32(v), 0, 1) }
func (r *Reverb) Mix() float64     { return float64(r.mix) }

func (r *Reverb) Process(l, rt float32) (float32, float32) {
	if !r.enabled {
		return l, rt
	}
	read := r.pos - r.tapOffset
	if read < 0 {
		read += len(r.buf)
	}
	out := r.buf[read]

	mono := (l + rt) * 0.5
	r.buf[r.pos] = mono + out*r.damping
	r.pos++
	if r.pos >= len(r.buf) {
		r.pos = 0
	}
	return l + (out-l)*r.mix, rt + (out-rt)*r.mix
}

func (r *Reverb) Reset() {
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.pos = 0
}
