// Package profile holds the fixed catalog of metronome sounds.
package profile

import (
	"time"

	"github.com/pkg/errors"
)

// Sound ids
const (
	CLICK = "click"
	WOOD  = "wood"
	BEEP  = "beep"
	TICK  = "tick"

	Default = CLICK
)

// ErrUnknownSound is returned when a sound id is not in the catalog.
var ErrUnknownSound = errors.New("unknown sound")

// Sound describes one synthetic tone. Values are never mutated after init.
type Sound struct {
	ID            string
	DisplayName   string
	FrequencyHz   float64
	PulseDuration time.Duration
}

var catalog = []Sound{
	{ID: CLICK, DisplayName: "Click", FrequencyHz: 1000, PulseDuration: 50 * time.Millisecond},
	{ID: WOOD, DisplayName: "Wood", FrequencyHz: 800, PulseDuration: 100 * time.Millisecond},
	{ID: BEEP, DisplayName: "Beep", FrequencyHz: 1500, PulseDuration: 30 * time.Millisecond},
	{ID: TICK, DisplayName: "Tick", FrequencyHz: 2000, PulseDuration: 20 * time.Millisecond},
}

// All returns the catalog in display order.
func All() []Sound {
	return append([]Sound(nil), catalog...)
}

// IDs returns sound ids in display order.
func IDs() []string {
	ids := make([]string, len(catalog))
	for i, s := range catalog {
		ids[i] = s.ID
	}
	return ids
}

// Lookup finds a sound by id.
func Lookup(id string) (Sound, error) {
	for _, s := range catalog {
		if s.ID == id {
			return s, nil
		}
	}
	return Sound{}, errors.Wrapf(ErrUnknownSound, "%q", id)
}

// Index returns the catalog position of id or -1.
func Index(id string) int {
	for i, s := range catalog {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Next returns the sound after id, wrapping around. Unknown ids yield the first sound.
func Next(id string) Sound {
	return catalog[(Index(id)+1)%len(catalog)]
}

// MustLookup is Lookup for ids known at compile time.
func MustLookup(id string) Sound {
	s, err := Lookup(id)
	if err != nil {
		panic(err)
	}
	return s
}
