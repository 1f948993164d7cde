// Command play sounds a chord (or arpeggio) on the synth, either on the
// default audio device or rendered offline to a WAV file.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	subsynth "github.com/cbegin/subsynth-go"
)

func main() {
	var (
		sampleRate = flag.Int("sample-rate", 48000, "output sample rate")
		presetPath = flag.String("preset", "", "path to a preset JSON file")
		notesArg   = flag.String("notes", "c4,e4,g4", "comma-separated notes (names like c#4 or MIDI numbers)")
		velocity   = flag.Float64("velocity", 0.8, "note velocity 0..1")
		hold       = flag.Float64("hold", 2.0, "seconds to hold the notes")
		tail       = flag.Float64("tail", 1.0, "seconds to render after release")
		volume     = flag.Float64("volume", 0.7, "master volume 0..1")
		arp        = flag.Bool("arp", false, "arpeggiate instead of sounding a chord")
		arpRate    = flag.Float64("arp-rate", 2, "arpeggiator steps per beat")
		outPath    = flag.String("out", "", "render offline to this WAV file instead of playing")
	)
	flag.Parse()

	notes, err := parseNotes(*notesArg)
	if err != nil {
		log.Fatal(err)
	}

	var pst subsynth.Preset
	havePreset := false
	if *presetPath != "" {
		pst, err = subsynth.LoadPreset(*presetPath)
		if err != nil {
			log.Fatalf("load preset: %v", err)
		}
		havePreset = true
	}

	if *outPath != "" {
		if err := renderToFile(*outPath, *sampleRate, notes, pst, havePreset, *velocity, *hold, *tail, *volume, *arp, *arpRate); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s\n", *outPath)
		return
	}

	pl, err := subsynth.NewPlayer(*sampleRate)
	if err != nil {
		log.Fatal(err)
	}
	s := pl.Synth()
	if havePreset {
		s.ApplyPreset(pst)
	}
	s.SubmitParam(subsynth.ParamMasterVolume, *volume)
	if *arp {
		s.SubmitParam(subsynth.ParamArpEnabled, 1)
		s.SubmitParam(subsynth.ParamArpRate, *arpRate)
	}
	for _, n := range notes {
		s.NoteOn(n, *velocity)
	}
	pl.Start()
	time.Sleep(time.Duration(*hold * float64(time.Second)))
	for _, n := range notes {
		s.NoteOff(n)
	}
	time.Sleep(time.Duration(*tail * float64(time.Second)))
	if err := pl.Stop(); err != nil {
		log.Fatal(err)
	}
}

func renderToFile(path string, sampleRate int, notes []int, pst subsynth.Preset, havePreset bool, velocity, hold, tail, volume float64, arp bool, arpRate float64) error {
	s, err := subsynth.NewSynth(sampleRate)
	if err != nil {
		return err
	}
	if havePreset {
		s.ApplyPreset(pst)
	}
	s.SubmitParam(subsynth.ParamMasterVolume, volume)
	if arp {
		s.SubmitParam(subsynth.ParamArpEnabled, 1)
		s.SubmitParam(subsynth.ParamArpRate, arpRate)
	}
	for _, n := range notes {
		s.NoteOn(n, velocity)
	}
	out := subsynth.RenderSeconds(s, hold)
	for _, n := range notes {
		s.NoteOff(n)
	}
	out = append(out, subsynth.RenderSeconds(s, tail)...)
	return subsynth.WriteWAVFile(path, out, sampleRate)
}

var noteOffsets = map[byte]int{'c': 0, 'd': 2, 'e': 4, 'f': 5, 'g': 7, 'a': 9, 'b': 11}

// parseNotes accepts "c4,e4,g4", "c#3", "eb5" or raw MIDI numbers like "60".
func parseNotes(arg string) ([]int, error) {
	var notes []int
	for _, tok := range strings.Split(arg, ",") {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			if n < 0 || n > 127 {
				return nil, fmt.Errorf("MIDI note %d out of range", n)
			}
			notes = append(notes, n)
			continue
		}
		off, ok := noteOffsets[tok[0]]
		if !ok {
			return nil, fmt.Errorf("invalid note %q", tok)
		}
		rest := tok[1:]
		switch {
		case strings.HasPrefix(rest, "#"):
			off++
			rest = rest[1:]
		case strings.HasPrefix(rest, "b"):
			off--
			rest = rest[1:]
		}
		octave, err := strconv.Atoi(rest)
		if err != nil {
			return nil, fmt.Errorf("invalid note %q", tok)
		}
		n := (octave+1)*12 + off
		if n < 0 || n > 127 {
			return nil, fmt.Errorf("note %q out of MIDI range", tok)
		}
		notes = append(notes, n)
	}
	if len(notes) == 0 {
		return nil, fmt.Errorf("no notes given")
	}
	return notes, nil
}
