package profile

import (
	"testing"
	"time"

	"github.com/pkg/errors"
)

func TestCatalog(t *testing.T) {
	tests := []struct {
		id       string
		name     string
		freq     float64
		duration time.Duration
	}{
		{CLICK, "Click", 1000, 50 * time.Millisecond},
		{WOOD, "Wood", 800, 100 * time.Millisecond},
		{BEEP, "Beep", 1500, 30 * time.Millisecond},
		{TICK, "Tick", 2000, 20 * time.Millisecond},
	}
	all := All()
	if len(all) != len(tests) {
		t.Fatalf("expected %d sounds, got %d", len(tests), len(all))
	}
	for i, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := Lookup(tt.id)
			if err != nil {
				t.Fatalf("Lookup(%q): %v", tt.id, err)
			}
			if s.DisplayName != tt.name || s.FrequencyHz != tt.freq || s.PulseDuration != tt.duration {
				t.Errorf("got %+v", s)
			}
			if all[i].ID != tt.id {
				t.Errorf("catalog order: position %d is %q, want %q", i, all[i].ID, tt.id)
			}
		})
	}
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("cowbell")
	if !errors.Is(err, ErrUnknownSound) {
		t.Fatalf("expected ErrUnknownSound, got %v", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	all := All()
	all[0].FrequencyHz = 1
	if MustLookup(CLICK).FrequencyHz != 1000 {
		t.Fatal("catalog mutated through All()")
	}
}

func TestNextWraps(t *testing.T) {
	if got := Next(TICK).ID; got != CLICK {
		t.Errorf("Next(tick) = %q, want click", got)
	}
	if got := Next(CLICK).ID; got != WOOD {
		t.Errorf("Next(click) = %q, want wood", got)
	}
	if got := Next("nope").ID; got != CLICK {
		t.Errorf("Next(unknown) = %q, want click", got)
	}
}
