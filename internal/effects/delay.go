package effects

// maxDelaySec bounds the delay time; the ring buffers are sized for it once
// so SetTime never reallocates.
const maxDelaySec = 2.0

// Delay is a stereo feedback delay with a freeze mode. Two independent mono
// rings share one write position; the read tap trails it by the configured
// time. Freezing mutes the input and pins feedback to unity so the buffered
// loop recirculates unchanged.
type Delay struct {
	enabled bool

	bufL, bufR  []float32
	pos         int
	timeSamples int
	feedback    float32
	mix         float32
	frozen      bool

	sampleRate int
}

// NewDelay creates the delay with a 0.3s tap, 40% feedback, half wet.
func NewDelay(sampleRate int) *Delay {
	n := int(maxDelaySec * float64(sampleRate))
	d := &Delay{
		bufL:       make([]float32, n),
		bufR:       make([]float32, n),
		sampleRate: sampleRate,
	}
	d.SetTime(0.3)
	d.SetFeedback(0.4)
	d.SetMix(0.5)
	return d
}

func (d *Delay) SetEnabled(on bool) { d.enabled = on }
func (d *Delay) Enabled() bool      { return d.enabled }

// SetTime sets the tap distance in seconds, clamped to [1ms, maxDelaySec].
// The buffer keeps its contents, so shortening the time mid-tail just reads
// an earlier point of it.
func (d *Delay) SetTime(seconds float64) {
	if seconds < 0.001 {
		seconds = 0.001
	}
	if seconds > maxDelaySec {
		seconds = maxDelaySec
	}
	n := int(seconds * float64(d.sampleRate))
	if n < 1 {
		n = 1
	}
	if n >= len(d.bufL) {
		n = len(d.bufL) - 1
	}
	d.timeSamples = n
}

// Time reports the tap distance in seconds.
func (d *Delay) Time() float64 {
	return float64(d.timeSamples) / float64(d.sampleRate)
}

// SetFeedback clamps to [0, 0.95]; unity feedback is reserved for freeze.
func (d *Delay) SetFeedback(v float64) { d.feedback = clamp(float32(v), 0, 0.95) }
func (d *Delay) Feedback() float64     { return float64(d.feedback) }

func (d *Delay) SetMix(v float64) { d.mix = clamp(float32(v), 0, 1) }
func (d *Delay) Mix() float64     { return float64(d.mix) }

// SetFreeze toggles freeze mode. While frozen the input is muted and the loop
// recirculates losslessly; unfreezing resumes normal write-through with the
// configured feedback.
func (d *Delay) SetFreeze(on bool) { d.frozen = on }
func (d *Delay) Frozen() bool      { return d.frozen }

func (d *Delay) Process(l, r float32) (float32, float32) {
	if !d.enabled {
		return l, r
	}
	read := d.pos - d.timeSamples
	if read < 0 {
		read += len(d.bufL)
	}
	outL := d.bufL[read]
	outR := d.bufR[read]

	inL, inR, fb := l, r, d.feedback
	if d.frozen {
		inL, inR, fb = 0, 0, 1
	}
	d.bufL[d.pos] = inL + outL*fb
	d.bufR[d.pos] = inR + outR*fb
	d.pos++
	if d.pos >= len(d.bufL) {
		d.pos = 0
	}
	return l + (outL-l)*d.mix, r + (outR-r)*d.mix
}

func (d *Delay) Reset() {
	for i := range d.bufL {
		d.bufL[i] = 0
		d.bufR[i] = 0
	}
	d.pos = 0
}
