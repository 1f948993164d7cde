package synth

// ModSource names a modulation signal.
type ModSource int

const (
	SrcNone ModSource = iota
	SrcLFO1
	SrcLFO2
	SrcLFO3
	SrcLFO4
	SrcEnvAmp
	SrcEnvFilter
	SrcEnvPitch
	SrcVelocity
	SrcModWheel
	SrcAftertouch
	SrcKeyTrack
	SrcRandom
	srcCount
)

// ModDest names a modulated voice parameter.
type ModDest int

const (
	DestNone ModDest = iota
	DestOsc1Pitch
	DestOsc1PulseWidth
	DestOsc2Pitch
	DestOsc2PulseWidth
	DestFilterCutoff
	DestFilterResonance
	DestAmp
	DestPan
	destCount
)

// MaxRoutings bounds the number of simultaneous source→destination routings.
const MaxRoutings = 16

// Routing connects one source to one destination with a signed depth.
type Routing struct {
	Source ModSource
	Dest   ModDest
	Depth  float64 // -1..1
}

// modSources carries the per-sample value of every source. The global slots
// (LFOs, wheel, aftertouch, random) are filled once per sample by the engine;
// the per-voice slots (envelopes, velocity, keytrack) are overwritten for
// each voice before folding.
type modSources [srcCount]float64

// modDests receives the summed, clamped contribution per destination.
type modDests [destCount]float64

// ModMatrix holds the active routings. Fixed-size storage; adding beyond
// MaxRoutings is refused rather than grown, keeping the audio path
// allocation-free.
type ModMatrix struct {
	routings [MaxRoutings]Routing
	n        int
}

// AddRouting registers a routing, clamping depth to [-1,1]. It returns false
// when all slots are taken.
func (m *ModMatrix) AddRouting(src ModSource, dest ModDest, depth float64) bool {
	if m.n >= MaxRoutings || src <= SrcNone || src >= srcCount || dest <= DestNone || dest >= destCount {
		return false
	}
	m.routings[m.n] = Routing{Source: src, Dest: dest, Depth: clamp(depth, -1, 1)}
	m.n++
	return true
}

// Clear removes all routings.
func (m *ModMatrix) Clear() { m.n = 0 }

// Routings returns the active routing slots.
func (m *ModMatrix) Routings() []Routing { return m.routings[:m.n] }

// fold sums every routing's source·depth into its destination accumulator.
// Contributions to the same destination add before the final clamp to [-1,1].
func (m *ModMatrix) fold(src *modSources, dst *modDests) {
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < m.n; i++ {
		r := &m.routings[i]
		dst[r.Dest] += src[r.Source] * r.Depth
	}
	for i := range dst {
		dst[i] = clamp(dst[i], -1, 1)
	}
}
