// Package clock is the metronome's beat scheduler.
//
// A Clock owns one recurring schedule and the position inside a four-beat
// measure. Every tick pulses the tone generator, tells the observer which beat
// sounded and advances the position. Changing tempo or sound while running
// throws the schedule away and arms a new one.
package clock

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vinser/metronome/internal/log"
	"github.com/vinser/metronome/internal/profile"
)

const (
	MinTempo      = 40
	MaxTempo      = 200
	DefaultTempo  = 120
	MeasureLength = 4
	AccentRatio   = 1.5 // frequency multiplier for an accented first beat
)

var (
	ErrInvalidTempo = errors.New("invalid tempo")
	ErrUnknownSound = profile.ErrUnknownSound
)

// Pulser plays one tone. *tone.Generator implements it.
type Pulser interface {
	Pulse(freqHz float64, d time.Duration)
}

// Beat is delivered to the Observer once per tick, and once with Reset set
// when the clock stops.
type Beat struct {
	Index  int
	Accent bool
	Reset  bool
	At     time.Time
}

// Observer receives beats. It runs on the scheduler goroutine and must not
// block or call back into the Clock; hand the beat off instead.
type Observer func(Beat)

// Retime selects what happens to the beat phase when tempo or sound changes
// while running.
type Retime int

const (
	// RetimeRestart starts a fresh period at the moment of the change.
	RetimeRestart Retime = iota
	// RetimePreservePhase keeps the last beat as anchor: the next beat comes one
	// new period after it, or immediately if that moment has already passed.
	RetimePreservePhase
)

func (r Retime) String() string {
	switch r {
	case RetimeRestart:
		return "restart"
	case RetimePreservePhase:
		return "preserve-phase"
	default:
		return "unknown"
	}
}

// State is a snapshot of the clock. BeatIndex is the beat the next tick will play.
type State struct {
	Running         bool
	Tempo           int
	BeatIndex       int
	Sound           profile.Sound
	AccentFirstBeat bool
	Retime          Retime
}

type Clock struct {
	emitMu sync.Mutex // serializes ticks and the stop notification

	mu       sync.Mutex
	sched    Scheduler
	pulser   Pulser
	observer Observer
	state    State
	handle   Handle
	gen      uint64 // bumped whenever the schedule is replaced or dropped
	session  uint64 // bumped on every start and stop
	lastTick time.Time
	nextDue  time.Time
}

type Option func(*Clock)

func WithScheduler(s Scheduler) Option {
	return func(c *Clock) { c.sched = s }
}

func WithObserver(o Observer) Option {
	return func(c *Clock) { c.observer = o }
}

func WithTempo(bpm int) Option {
	return func(c *Clock) { c.state.Tempo = ClampTempo(bpm) }
}

// WithSound selects the initial sound. Unknown ids keep the default.
func WithSound(id string) Option {
	return func(c *Clock) {
		s, err := profile.Lookup(id)
		if err != nil {
			log.Warnf("clock: %v, keeping %s", err, c.state.Sound.ID)
			return
		}
		c.state.Sound = s
	}
}

func WithAccent(on bool) Option {
	return func(c *Clock) { c.state.AccentFirstBeat = on }
}

func WithRetime(r Retime) Option {
	return func(c *Clock) { c.state.Retime = r }
}

// New returns a stopped clock. p may be nil for a silent clock.
func New(p Pulser, opts ...Option) *Clock {
	c := &Clock{
		pulser: p,
		state: State{
			Tempo: DefaultTempo,
			Sound: profile.MustLookup(profile.Default),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.sched == nil {
		c.sched = NewScheduler()
	}
	return c
}

// ClampTempo forces bpm into [MinTempo, MaxTempo].
func ClampTempo(bpm int) int {
	if bpm < MinTempo {
		return MinTempo
	}
	if bpm > MaxTempo {
		return MaxTempo
	}
	return bpm
}

// Period is the time between beats at bpm.
func Period(bpm int) time.Duration {
	return time.Minute / time.Duration(ClampTempo(bpm))
}

// ParseTempo reads a tempo typed by a user. Numbers are rounded and clamped;
// anything else wraps ErrInvalidTempo.
func ParseTempo(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return ClampTempo(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.Wrapf(ErrInvalidTempo, "%q", s)
	}
	f = math.Max(MinTempo, math.Min(MaxTempo, math.Round(f)))
	return int(f), nil
}

// State returns a snapshot of the clock.
func (c *Clock) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Running
}

// Start begins ticking with the first beat right away. No-op when running.
func (c *Clock) Start() {
	c.mu.Lock()
	if c.state.Running {
		c.mu.Unlock()
		return
	}
	c.state.Running = true
	c.state.BeatIndex = 0
	c.session++
	c.lastTick = time.Time{}
	c.armLocked("start", 0)
	st := c.state
	c.mu.Unlock()

	log.Command("start", st.Running, st.Tempo, st.Sound.ID)
}

// Stop cancels the schedule, rewinds to beat 0 and publishes the reset.
// No-op when stopped.
func (c *Clock) Stop() {
	c.mu.Lock()
	if !c.state.Running {
		c.mu.Unlock()
		return
	}
	c.cancelLocked()
	c.state.Running = false
	c.state.BeatIndex = 0
	c.session++
	obs := c.observer
	st := c.state
	now := c.sched.Now()
	c.mu.Unlock()

	log.Command("stop", st.Running, st.Tempo, st.Sound.ID)

	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if obs != nil {
		obs(Beat{Index: 0, Reset: true, At: now})
	}
}

// Toggle starts a stopped clock or stops a running one and reports whether
// it is now running.
func (c *Clock) Toggle() bool {
	if c.Running() {
		c.Stop()
		return false
	}
	c.Start()
	return true
}

// SetTempo stores a clamped tempo and re-arms a running clock. It returns the
// tempo actually applied.
func (c *Clock) SetTempo(bpm int) int {
	bpm = ClampTempo(bpm)
	c.mu.Lock()
	if bpm == c.state.Tempo {
		c.mu.Unlock()
		return bpm
	}
	c.state.Tempo = bpm
	if c.state.Running {
		c.rearmLocked("tempo")
	}
	st := c.state
	c.mu.Unlock()

	log.Command("tempo", st.Running, st.Tempo, st.Sound.ID)
	return bpm
}

// SetTempoString applies a textual tempo. Non-numeric input is rejected and
// the current tempo kept.
func (c *Clock) SetTempoString(s string) (int, error) {
	bpm, err := ParseTempo(s)
	if err != nil {
		log.Warnf("clock: %v", err)
		return c.State().Tempo, err
	}
	return c.SetTempo(bpm), nil
}

// SetSound selects a sound by id and re-arms a running clock. Unknown ids are
// rejected and the current sound kept.
func (c *Clock) SetSound(id string) error {
	s, err := profile.Lookup(id)
	if err != nil {
		log.Warnf("clock: %v", err)
		return err
	}
	c.mu.Lock()
	if s.ID == c.state.Sound.ID {
		c.mu.Unlock()
		return nil
	}
	c.state.Sound = s
	if c.state.Running {
		c.rearmLocked("sound")
	}
	st := c.state
	c.mu.Unlock()

	log.Command("sound", st.Running, st.Tempo, st.Sound.ID)
	return nil
}

// SetAccent turns the first-beat accent on or off from the next tick.
func (c *Clock) SetAccent(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.AccentFirstBeat = on
}

// SetRetime changes how future reconfigurations treat the beat phase.
func (c *Clock) SetRetime(r Retime) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Retime = r
}

// Close stops the clock.
func (c *Clock) Close() {
	c.Stop()
}

func (c *Clock) cancelLocked() {
	if c.handle != nil {
		c.handle.Cancel()
		c.handle = nil
	}
	c.gen++
}

func (c *Clock) armLocked(reason string, first time.Duration) {
	c.cancelLocked()
	gen := c.gen
	period := Period(c.state.Tempo)
	c.nextDue = c.sched.Now().Add(first)
	c.handle = c.sched.Schedule(first, period, func() { c.tick(gen) })
	log.Retimed(reason, period, first)
}

func (c *Clock) rearmLocked(reason string) {
	first := Period(c.state.Tempo)
	if c.state.Retime == RetimePreservePhase && !c.lastTick.IsZero() {
		first = c.lastTick.Add(first).Sub(c.sched.Now())
		if first < 0 {
			first = 0
		}
	}
	c.armLocked(reason, first)
}

func (c *Clock) tick(gen uint64) {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()

	c.mu.Lock()
	if !c.state.Running || gen != c.gen {
		c.mu.Unlock()
		return
	}
	now := c.sched.Now()
	late := now.Sub(c.nextDue)
	c.lastTick = now
	c.nextDue = c.nextDue.Add(Period(c.state.Tempo))
	index := c.state.BeatIndex
	sound := c.state.Sound
	accent := c.state.AccentFirstBeat && index == 0
	session := c.session
	pulser, obs := c.pulser, c.observer
	c.mu.Unlock()

	freq := sound.FrequencyHz
	if accent {
		freq *= AccentRatio
	}
	if pulser != nil {
		pulser.Pulse(freq, sound.PulseDuration)
	}
	log.Beat(index, freq, late)
	if obs != nil {
		obs(Beat{Index: index, Accent: accent, At: now})
	}

	c.mu.Lock()
	if c.session == session {
		c.state.BeatIndex = (index + 1) % MeasureLength
	}
	c.mu.Unlock()
}
