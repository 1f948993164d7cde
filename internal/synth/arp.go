package synth

// ArpMode is the step order of the arpeggiator.
type ArpMode int

const (
	ArpUp ArpMode = iota
	ArpDown
	ArpUpDown
	ArpRandom
)

const maxHeldNotes = 16

// arpeggiator steps through the held-note set at a tempo-derived rate,
// triggering and releasing voices itself. It runs entirely on the audio
// thread; NoteOn/NoteOff only edit the held set.
type arpeggiator struct {
	enabled bool
	mode    ArpMode
	rate    float64 // steps per beat: 1=quarter, 2=eighth, 4=sixteenth
	gate    float64 // fraction of a step the note sounds

	held    [maxHeldNotes]int
	heldVel [maxHeldNotes]float64
	n       int

	step     int
	dir      int // +1/-1 for ArpUpDown
	nextStep uint64
	gateOff  uint64
	lastNote int
	sounding bool
}

func (a *arpeggiator) init() {
	a.rate = 2
	a.gate = 0.8
	a.dir = 1
	a.lastNote = -1
}

func (a *arpeggiator) setEnabled(on bool, e *Engine) {
	if a.enabled == on {
		return
	}
	a.enabled = on
	if !on {
		if a.sounding && a.lastNote >= 0 {
			e.releaseNote(a.lastNote)
		}
		a.flush()
		return
	}
	a.nextStep = e.sampleCounter // first step fires immediately
	a.step = -1                  // so the first ArpUp step lands on index 0
	a.dir = 1
}

func (a *arpeggiator) setRate(stepsPerBeat float64) {
	a.rate = clamp(stepsPerBeat, 0.25, 16)
}

func (a *arpeggiator) setMode(m ArpMode) {
	if m < ArpUp || m > ArpRandom {
		m = ArpUp
	}
	a.mode = m
}

// hold inserts a note into the held set, kept sorted ascending.
func (a *arpeggiator) hold(note int, velocity float64) {
	for i := 0; i < a.n; i++ {
		if a.held[i] == note {
			a.heldVel[i] = velocity
			return
		}
	}
	if a.n >= maxHeldNotes {
		return
	}
	i := a.n
	for i > 0 && a.held[i-1] > note {
		a.held[i] = a.held[i-1]
		a.heldVel[i] = a.heldVel[i-1]
		i--
	}
	a.held[i] = note
	a.heldVel[i] = velocity
	a.n++
}

func (a *arpeggiator) unhold(note int, e *Engine) {
	for i := 0; i < a.n; i++ {
		if a.held[i] != note {
			continue
		}
		copy(a.held[i:], a.held[i+1:a.n])
		copy(a.heldVel[i:], a.heldVel[i+1:a.n])
		a.n--
		if a.sounding && a.lastNote == note {
			e.releaseNote(note)
			a.sounding = false
		}
		return
	}
}

func (a *arpeggiator) flush() {
	a.n = 0
	a.sounding = false
	a.lastNote = -1
}

// tick advances one sample: end the gate when due, fire the next step when
// due. Step length derives from the engine tempo so ArpRate stays musical.
func (a *arpeggiator) tick(e *Engine) {
	if !a.enabled {
		return
	}
	if a.sounding && e.sampleCounter >= a.gateOff {
		if a.lastNote >= 0 {
			e.releaseNote(a.lastNote)
		}
		a.sounding = false
	}
	if e.sampleCounter < a.nextStep || a.n == 0 {
		return
	}

	stepSamples := uint64(60.0 / (e.tempo * a.rate) * e.sampleRate)
	if stepSamples < 1 {
		stepSamples = 1
	}
	idx := a.pickStep(e)
	note := a.held[idx]
	e.triggerNote(note, a.heldVel[idx])
	a.lastNote = note
	a.sounding = true
	a.gateOff = e.sampleCounter + uint64(float64(stepSamples)*clamp(a.gate, 0.05, 1))
	a.nextStep = e.sampleCounter + stepSamples
}

func (a *arpeggiator) pickStep(e *Engine) int {
	if a.n == 1 {
		a.step = 0
		return 0
	}
	switch a.mode {
	case ArpDown:
		a.step--
		if a.step < 0 {
			a.step = a.n - 1
		}
	case ArpUpDown:
		a.step += a.dir
		if a.step >= a.n {
			a.step = a.n - 2
			a.dir = -1
		} else if a.step < 0 {
			a.step = 1
			a.dir = 1
		}
	case ArpRandom:
		r := (e.noise.next() + 1) * 0.5
		a.step = int(r * float64(a.n))
		if a.step >= a.n {
			a.step = a.n - 1
		}
	default: // ArpUp
		a.step++
		if a.step >= a.n {
			a.step = 0
		}
	}
	return a.step
}
