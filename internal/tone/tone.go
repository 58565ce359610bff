// Package tone synthesizes short percussive sine pulses.
//
// Every pulse is its own streamer graph: a sine oscillator shaped by an
// exponential gain envelope and cut to the pulse duration. The graph is handed
// to a Sink and forgotten; it releases itself when it drains.
package tone

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/generators"
	"github.com/pkg/errors"

	"github.com/vinser/metronome/internal/log"
)

const (
	StartGain = 0.3  // gain at pulse onset
	FloorGain = 0.01 // gain the envelope reaches at the end of the pulse
)

// Sink plays streamers. *sound.Manager implements it.
type Sink interface {
	Play(s beep.Streamer) error
}

// Envelope is an exponential decay from Start to Floor over Duration.
type Envelope struct {
	Start    float64
	Floor    float64
	Duration time.Duration
}

// Click is the envelope used for every pulse.
func Click(d time.Duration) Envelope {
	return Envelope{Start: StartGain, Floor: FloorGain, Duration: d}
}

// Gain returns the envelope level t after onset.
func (e Envelope) Gain(t time.Duration) float64 {
	if t <= 0 || e.Duration <= 0 {
		return e.Start
	}
	if t >= e.Duration {
		return e.Floor
	}
	return e.Start * math.Pow(e.Floor/e.Start, float64(t)/float64(e.Duration))
}

// Generator turns pulse requests into streamers for its Sink.
// A nil Sink makes every Pulse a no-op.
type Generator struct {
	sink       Sink
	sampleRate beep.SampleRate
	failures   atomic.Int64
}

func New(sink Sink, sampleRate beep.SampleRate) *Generator {
	return &Generator{sink: sink, sampleRate: sampleRate}
}

// Pulse plays one decaying sine at freqHz for d. It never blocks on playback
// and never fails: without working audio it is silent.
func (g *Generator) Pulse(freqHz float64, d time.Duration) {
	if g == nil || g.sink == nil {
		return
	}
	s, err := g.Stream(freqHz, d)
	if err == nil {
		err = g.sink.Play(s)
	}
	if err != nil && g.failures.Add(1) == 1 {
		log.Warnf("tone: pulse dropped, continuing silently: %v", err)
	}
}

// Failures counts pulses that could not be played.
func (g *Generator) Failures() int64 {
	return g.failures.Load()
}

// Stream builds the streamer for one pulse without playing it.
func (g *Generator) Stream(freqHz float64, d time.Duration) (beep.Streamer, error) {
	if d <= 0 {
		return nil, errors.Errorf("tone: non-positive duration %v", d)
	}
	osc, err := generators.SineTone(g.sampleRate, freqHz)
	if err != nil {
		return nil, errors.Wrapf(err, "tone: %.0f Hz", freqHz)
	}
	total := g.sampleRate.N(d)
	return beep.Take(total, shape(osc, Click(d), total)), nil
}

// shape applies env to s sample by sample. Multiplying by a constant ratio per
// sample walks the same curve as Envelope.Gain.
func shape(s beep.Streamer, env Envelope, total int) beep.Streamer {
	gain := env.Start
	step := 1.0
	if total > 0 {
		step = math.Pow(env.Floor/env.Start, 1/float64(total))
	}
	return beep.StreamerFunc(func(buf [][2]float64) (int, bool) {
		n, ok := s.Stream(buf)
		for i := 0; i < n; i++ {
			buf[i][0] *= gain
			buf[i][1] *= gain
			gain *= step
		}
		return n, ok
	})
}
