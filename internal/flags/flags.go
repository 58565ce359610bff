package flags

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/vinser/metronome/internal/clock"
	"github.com/vinser/metronome/internal/profile"
)

// Flags stores the parsed command-line options
type Flags struct {
	BPM           int
	Sound         string
	Accent        bool
	PreservePhase bool
	Mute          bool
	AutoStart     bool
	Debug         bool
	LogPath       string
	Version       bool
}

// Default returns the options used when no flags are given.
func Default() Flags {
	return Flags{
		BPM:   clock.DefaultTempo,
		Sound: profile.Default,
	}
}

// Retime maps the phase flag to the clock policy.
func (f Flags) Retime() clock.Retime {
	if f.PreservePhase {
		return clock.RetimePreservePhase
	}
	return clock.RetimeRestart
}

// Parse parses command-line arguments (without the program name).
// The tempo is clamped to the supported range; an unknown sound is an error.
func Parse(name string, args []string, out io.Writer) (Flags, error) {
	fl := Default()

	fsv := NewFlagSetWithVisit(name, out)
	fsv.IntVar(&fl.BPM, "bpm", "b", fl.BPM, fmt.Sprintf("Tempo in beats per minute (%d-%d)", clock.MinTempo, clock.MaxTempo))
	fsv.StringVar(&fl.Sound, "sound", "s", fl.Sound, "Sound: "+strings.Join(profile.IDs(), ", "))
	fsv.BoolVar(&fl.Accent, "accent", "a", false, "Accent the first beat of each measure")
	fsv.BoolVar(&fl.PreservePhase, "phase", "p", false, "Keep the beat phase when tempo or sound changes")
	fsv.BoolVar(&fl.Mute, "mute", "m", false, "Start muted")
	fsv.BoolVar(&fl.AutoStart, "autostart", "g", false, "Start ticking immediately")
	fsv.BoolVar(&fl.Debug, "debug", "d", false, "Trace every beat in the diagnostics log")
	fsv.StringVar(&fl.LogPath, "logpath", "l", "", "Diagnostics log directory")
	fsv.BoolVar(&fl.Version, "version", "v", false, "Print version and exit")

	if err := fsv.Parse(args); err != nil {
		return fl, err
	}

	if fsv.IsCustom("bpm") {
		fl.BPM = clock.ClampTempo(fl.BPM)
	}

	// Normalize sound value
	fl.Sound = strings.ToLower(strings.TrimSpace(fl.Sound))
	if _, err := profile.Lookup(fl.Sound); err != nil {
		fmt.Fprintf(out, "Invalid sound: %s. Use %s.\n", fl.Sound, strings.Join(profile.IDs(), ", "))
		fsv.Usage()
		return fl, errors.Wrap(err, "flag -sound")
	}

	return fl, nil
}
