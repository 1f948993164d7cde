package subsynth

import (
	"sync"
	"time"

	intaudio "github.com/cbegin/subsynth-go/internal/audio"
)

// PlayerOption configures a Player.
type PlayerOption func(*playerConfig)

type playerConfig struct {
	synthOpts []Option
	sampleTap func([]float32)
}

// WithSynthOptions forwards construction options to the embedded Synth.
func WithSynthOptions(opts ...Option) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.synthOpts = append(cfg.synthOpts, opts...)
	}
}

// WithSampleTap installs a callback invoked with each rendered stereo buffer,
// after the effect rack. The callback runs on the audio thread; keep work
// brief and non-blocking.
func WithSampleTap(tap func([]float32)) PlayerOption {
	return func(cfg *playerConfig) {
		cfg.sampleTap = tap
	}
}

// tapSource feeds the device from the synth and mirrors each buffer to the
// optional tap.
type tapSource struct {
	synth *Synth
	tap   func([]float32)
}

func (t *tapSource) Process(dst []float32) {
	t.synth.Process(dst)
	if t.tap != nil {
		t.tap(dst)
	}
}

// Player runs a Synth against the default output device. The device pulls
// blocks on its own mixer thread; everything reachable from Process stays
// allocation-free, so control methods remain safe to call while playing.
type Player struct {
	mu         sync.Mutex
	sampleRate int
	synth      *Synth
	audio      *intaudio.Player
	started    bool
}

// NewPlayer creates a player and opens the output device. Playback does not
// start until Start is called.
func NewPlayer(sampleRate int, opts ...PlayerOption) (*Player, error) {
	cfg := playerConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	s, err := NewSynth(sampleRate, cfg.synthOpts...)
	if err != nil {
		return nil, err
	}
	backend, err := intaudio.NewPlayer(sampleRate, &tapSource{synth: s, tap: cfg.sampleTap})
	if err != nil {
		return nil, err
	}
	return &Player{
		sampleRate: sampleRate,
		synth:      s,
		audio:      backend,
	}, nil
}

// Synth returns the embedded synth for note events, parameter submission and
// configuration.
func (p *Player) Synth() *Synth { return p.synth }

// Start begins (or resumes) playback.
func (p *Player) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Play()
		p.started = true
	}
}

// Pause suspends playback; Start resumes it.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.Pause()
	}
}

// SetDeviceVolume sets the output device gain, 0..1, after the synth's own
// master volume and limiter.
func (p *Player) SetDeviceVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio != nil {
		p.audio.SetVolume(v)
	}
}

// Position reports the playback position the listener currently hears,
// including device buffering latency. Zero when stopped.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	a := p.audio
	p.mu.Unlock()
	if a == nil {
		return 0
	}
	return a.Position()
}

// Stop releases every voice and closes the device. The player cannot be
// restarted afterwards; create a new one.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.audio == nil {
		return nil
	}
	p.synth.AllNotesOff()
	err := p.audio.Stop()
	p.audio = nil
	return err
}
