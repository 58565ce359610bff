package tone

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/pkg/errors"
)

const sr = beep.SampleRate(44100)

type fakeSink struct {
	mu    sync.Mutex
	plays []beep.Streamer
	err   error
}

func (f *fakeSink) Play(s beep.Streamer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.plays = append(f.plays, s)
	return nil
}

func render(s beep.Streamer) [][2]float64 {
	var out [][2]float64
	buf := make([][2]float64, 256)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok || n == 0 {
			return out
		}
	}
}

func TestEnvelopeGain(t *testing.T) {
	env := Click(50 * time.Millisecond)
	tests := []struct {
		at   time.Duration
		want float64
	}{
		{0, 0.3},
		{25 * time.Millisecond, math.Sqrt(0.3 * 0.01)},
		{50 * time.Millisecond, 0.01},
		{80 * time.Millisecond, 0.01},
	}
	for _, tt := range tests {
		if got := env.Gain(tt.at); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Gain(%v) = %v, want %v", tt.at, got, tt.want)
		}
	}
	prev := env.Gain(0)
	for ms := 1; ms <= 50; ms++ {
		g := env.Gain(time.Duration(ms) * time.Millisecond)
		if g >= prev {
			t.Fatalf("gain not decaying at %dms: %v >= %v", ms, g, prev)
		}
		prev = g
	}
}

func TestPulseRendersDecayingSine(t *testing.T) {
	sink := &fakeSink{}
	g := New(sink, sr)
	g.Pulse(1000, 50*time.Millisecond)

	if len(sink.plays) != 1 {
		t.Fatalf("expected 1 streamer, got %d", len(sink.plays))
	}
	out := render(sink.plays[0])
	if want := sr.N(50 * time.Millisecond); len(out) != want {
		t.Fatalf("pulse length %d samples, want %d", len(out), want)
	}

	peak := func(from, to int) float64 {
		m := 0.0
		for _, s := range out[from:to] {
			m = math.Max(m, math.Abs(s[0]))
		}
		return m
	}
	oneMs := sr.N(time.Millisecond)
	if p := peak(0, len(out)); p > StartGain+1e-9 {
		t.Errorf("peak %v exceeds start gain", p)
	}
	if p := peak(0, oneMs); p < 0.25 {
		t.Errorf("onset too quiet: %v", p)
	}
	if p := peak(len(out)-oneMs, len(out)); p > 0.0115 {
		t.Errorf("tail not decayed to floor: %v", p)
	}
}

func TestPulsesAreIndependent(t *testing.T) {
	sink := &fakeSink{}
	g := New(sink, sr)
	g.Pulse(800, 100*time.Millisecond)
	g.Pulse(2000, 20*time.Millisecond)
	if len(sink.plays) != 2 {
		t.Fatalf("expected 2 streamers, got %d", len(sink.plays))
	}
	short := render(sink.plays[1])
	long := render(sink.plays[0])
	if len(short) != sr.N(20*time.Millisecond) || len(long) != sr.N(100*time.Millisecond) {
		t.Fatalf("unexpected lengths: %d, %d", len(short), len(long))
	}
}

func TestPulseWithoutAudio(t *testing.T) {
	// nil sink
	New(nil, sr).Pulse(1000, 50*time.Millisecond)

	// failing sink
	sink := &fakeSink{err: errors.New("device gone")}
	g := New(sink, sr)
	g.Pulse(1000, 50*time.Millisecond)
	g.Pulse(1000, 50*time.Millisecond)
	if g.Failures() != 2 {
		t.Fatalf("expected 2 failures, got %d", g.Failures())
	}
}

func TestStreamRejectsBadInput(t *testing.T) {
	g := New(&fakeSink{}, sr)
	if _, err := g.Stream(1000, 0); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := g.Stream(30000, 10*time.Millisecond); err == nil {
		t.Error("expected error above Nyquist")
	}
}
