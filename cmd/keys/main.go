// Command keys is a terminal keyboard for the synth: the home row plays
// notes, a MIDI input port can drive it too, and the status panel shows the
// output meter and the parameters under keyboard control.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // register MIDI driver

	subsynth "github.com/cbegin/subsynth-go"
)

// Piano layout on the computer keyboard, home row = white keys.
var keyNotes = map[string]int{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12, "o": 13,
	"l": 14, "p": 15, ";": 16,
}

const gateTime = 400 * time.Millisecond

type meterMsg struct{}

type gateOffMsg struct{ note int }

type midiMsg struct {
	kind     int // 0 note on, 1 note off, 2 control, 3 bend, 4 aftertouch
	note     int
	velocity float64
	control  uint8
	value    float64
}

type model struct {
	synth  *subsynth.Synth
	player *subsynth.Player

	octave   int
	volume   float64
	cutoff   float64
	arpOn    bool
	frozen   bool
	delayOn  bool
	reverbOn bool
	distOn   bool

	peak, rms float64
	midiPort  string
	quitting  bool
}

func newModel(pl *subsynth.Player, midiPort string) model {
	return model{
		synth:    pl.Synth(),
		player:   pl,
		octave:   4,
		volume:   0.7,
		cutoff:   8000,
		midiPort: midiPort,
	}
}

func meterTick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg { return meterMsg{} })
}

func gateOff(note int) tea.Cmd {
	return tea.Tick(gateTime, func(time.Time) tea.Msg { return gateOffMsg{note: note} })
}

func (m model) Init() tea.Cmd {
	return meterTick()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case gateOffMsg:
		m.synth.NoteOff(msg.note)

	case meterMsg:
		m.peak, m.rms = m.synth.Meter()
		return m, meterTick()

	case midiMsg:
		switch msg.kind {
		case 0:
			m.synth.NoteOn(msg.note, msg.velocity)
		case 1:
			m.synth.NoteOff(msg.note)
		case 2:
			if msg.control == 1 {
				m.synth.SubmitParam(subsynth.ParamModWheel, msg.value)
			}
		case 3:
			m.synth.SubmitParam(subsynth.ParamPitchBend, msg.value)
		case 4:
			m.synth.SubmitParam(subsynth.ParamAftertouch, msg.value)
		}
	}
	return m, nil
}

func (m model) handleKey(key string) (tea.Model, tea.Cmd) {
	if off, ok := keyNotes[key]; ok {
		note := (m.octave+1)*12 + off
		if note <= 127 {
			m.synth.NoteOn(note, 0.8)
			return m, gateOff(note)
		}
		return m, nil
	}
	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.player.Stop()
		return m, tea.Quit
	case "z":
		if m.octave > 0 {
			m.octave--
		}
	case "x":
		if m.octave < 8 {
			m.octave++
		}
	case "up":
		m.cutoff = clampF(m.cutoff*1.25, 20, 20000)
		m.synth.SubmitParam(subsynth.ParamFilterCutoff, m.cutoff)
	case "down":
		m.cutoff = clampF(m.cutoff/1.25, 20, 20000)
		m.synth.SubmitParam(subsynth.ParamFilterCutoff, m.cutoff)
	case "+", "=":
		m.volume = clampF(m.volume+0.05, 0, 1)
		m.synth.SubmitParam(subsynth.ParamMasterVolume, m.volume)
	case "-", "_":
		m.volume = clampF(m.volume-0.05, 0, 1)
		m.synth.SubmitParam(subsynth.ParamMasterVolume, m.volume)
	case "m":
		m.arpOn = !m.arpOn
		m.synth.SubmitParam(subsynth.ParamArpEnabled, boolVal(m.arpOn))
	case "1":
		m.distOn = !m.distOn
		m.synth.SubmitParam(subsynth.ParamDistortionEnabled, boolVal(m.distOn))
	case "2":
		m.delayOn = !m.delayOn
		m.synth.SubmitParam(subsynth.ParamDelayEnabled, boolVal(m.delayOn))
	case "3":
		m.reverbOn = !m.reverbOn
		m.synth.SubmitParam(subsynth.ParamReverbEnabled, boolVal(m.reverbOn))
	case "0":
		m.frozen = !m.frozen
		m.synth.SubmitParam(subsynth.ParamDelayFreeze, boolVal(m.frozen))
	case " ", "space":
		m.synth.SubmitParam(subsynth.ParamPanic, 1)
	}
	return m, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("84"))
	meterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func (m model) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("subsynth keys"))
	if m.midiPort != "" {
		b.WriteString(labelStyle.Render("  midi: " + m.midiPort))
	}
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		labelStyle.Render("octave"), valueStyle.Render(fmt.Sprintf("C%d", m.octave)),
		labelStyle.Render("volume"), valueStyle.Render(fmt.Sprintf("%3.0f%%", m.volume*100)),
		labelStyle.Render("cutoff"), valueStyle.Render(fmt.Sprintf("%5.0f Hz", m.cutoff)),
	))
	b.WriteString(fmt.Sprintf("%s %s %s %s %s %s\n",
		labelStyle.Render("fx:"), toggleLabel("dist", m.distOn),
		toggleLabel("delay", m.delayOn), toggleLabel("reverb", m.reverbOn),
		toggleLabel("freeze", m.frozen), toggleLabel("arp", m.arpOn),
	))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("peak ") + meterBar(m.peak) + "\n")
	b.WriteString(labelStyle.Render("rms  ") + meterBar(m.rms) + "\n")
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("a..; play  z/x octave  ↑/↓ cutoff  +/- volume  m arp  1/2/3 fx  0 freeze  space panic  q quit"))
	return b.String()
}

func toggleLabel(name string, on bool) string {
	if on {
		return onStyle.Render("[" + name + "]")
	}
	return labelStyle.Render(" " + name + " ")
}

func meterBar(level float64) string {
	const width = 40
	n := int(clampF(level, 0, 1) * width)
	return meterStyle.Render(strings.Repeat("█", n)) + labelStyle.Render(strings.Repeat("░", width-n))
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func boolVal(on bool) float64 {
	if on {
		return 1
	}
	return 0
}

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		presetPath = flag.String("preset", "", "path to a preset JSON file")
		midiIdx    = flag.Int("midi", -1, "MIDI input port index (-1 disables, see -list-midi)")
		listMIDI   = flag.Bool("list-midi", false, "list MIDI input ports and exit")
	)
	flag.Parse()

	if *listMIDI {
		for i, port := range midi.GetInPorts() {
			fmt.Printf("%d: %s\n", i, port.String())
		}
		return
	}

	pl, err := subsynth.NewPlayer(*sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	if *presetPath != "" {
		pst, err := subsynth.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("load preset: %v", err)
		}
		pl.Synth().ApplyPreset(pst)
	}

	var (
		inPort   drivers.In
		portName string
	)
	if *midiIdx >= 0 {
		inPort, err = midi.InPort(*midiIdx)
		if err != nil {
			log.Fatalf("midi port %d: %v", *midiIdx, err)
		}
		portName = inPort.String()
	}

	// The program must exist before the MIDI listener starts sending to it.
	program := tea.NewProgram(newModel(pl, portName), tea.WithAltScreen())

	var stopMIDI func()
	if inPort != nil {
		stopMIDI, err = midi.ListenTo(inPort, func(msg midi.Message, _ int32) {
			var ch, note, vel uint8
			var bendRel int16
			var bendAbs uint16
			var pressure uint8
			var cc, val uint8
			switch {
			case msg.GetNoteStart(&ch, &note, &vel):
				program.Send(midiMsg{kind: 0, note: int(note), velocity: float64(vel) / 127})
			case msg.GetNoteEnd(&ch, &note):
				program.Send(midiMsg{kind: 1, note: int(note)})
			case msg.GetControlChange(&ch, &cc, &val):
				program.Send(midiMsg{kind: 2, control: cc, value: float64(val) / 127})
			case msg.GetPitchBend(&ch, &bendRel, &bendAbs):
				program.Send(midiMsg{kind: 3, value: float64(bendRel) / 8192})
			case msg.GetAfterTouch(&ch, &pressure):
				program.Send(midiMsg{kind: 4, value: float64(pressure) / 127})
			}
		})
		if err != nil {
			log.Fatalf("midi listen: %v", err)
		}
	}

	pl.Start()
	if _, err := program.Run(); err != nil {
		log.Fatal(err)
	}
	if stopMIDI != nil {
		stopMIDI()
	}
	midi.CloseDriver()
}
