package params

import "sync/atomic"

// Type identifies the engine parameter addressed by a Change.
type Type int

const (
	MasterVolume Type = iota
	MasterTune
	Tempo
	FilterCutoff
	FilterResonance
	FilterMode
	FilterEnvAmount
	EnvAttack
	EnvDecay
	EnvSustain
	EnvRelease
	PitchBend
	ModWheel
	Aftertouch
	DistortionEnabled
	DistortionDrive
	DistortionMix
	DelayEnabled
	DelayTime
	DelayFeedback
	DelayMix
	DelayFreeze
	ReverbEnabled
	ReverbSize
	ReverbDamping
	ReverbMix
	ArpEnabled
	ArpRate
	ArpMode
	Panic
	typeCount
)

// Change is one parameter update. Immutable once enqueued.
type Change struct {
	Type  Type
	Value float64
}

// DefaultCapacity matches the control surface's worst-case burst: a full
// preset load plus a few knob gestures within one audio block.
const DefaultCapacity = 256

// Queue is a bounded single-producer/single-consumer ring buffer carrying
// parameter changes from the control thread into the audio thread.
//
// Exactly one goroutine may call Push and exactly one may call Pop without
// external locking. head and tail only ever increase; their difference is the
// fill level. The consumer never blocks and the producer never grows the
// buffer, so the audio thread stays allocation- and wait-free.
type Queue struct {
	buf  []Change
	head atomic.Uint64 // next slot to pop; advanced only by the consumer
	tail atomic.Uint64 // next slot to push; advanced only by the producer
}

// NewQueue creates a queue holding up to capacity changes.
// Non-positive capacities fall back to DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{buf: make([]Change, capacity)}
}

// Cap returns the fixed capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Len returns the number of buffered changes. Advisory only when both
// threads are running.
func (q *Queue) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Push enqueues a change. It returns false and drops the change when the
// queue is full; the caller may retry on its next tick.
func (q *Queue) Push(t Type, value float64) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() >= uint64(len(q.buf)) {
		return false
	}
	q.buf[tail%uint64(len(q.buf))] = Change{Type: t, Value: value}
	// Publish the slot after the write so the consumer never observes a
	// half-written Change.
	q.tail.Store(tail + 1)
	return true
}

// Pop dequeues the oldest change. It returns false when the queue is empty.
func (q *Queue) Pop() (Change, bool) {
	head := q.head.Load()
	if head == q.tail.Load() {
		return Change{}, false
	}
	c := q.buf[head%uint64(len(q.buf))]
	q.head.Store(head + 1)
	return c, true
}

// Drain pops every pending change in FIFO order, invoking apply for each.
// Called by the audio thread once per processing block.
func (q *Queue) Drain(apply func(Change)) {
	for {
		c, ok := q.Pop()
		if !ok {
			return
		}
		apply(c)
	}
}
