// Package sound owns the process-wide audio output: one mixer feeding one
// backend. Callers hand it finished streamers; drained streamers are dropped
// by the mixer, so every pulse cleans up after itself.
package sound

import (
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/pkg/errors"

	"github.com/vinser/metronome/internal/log"
)

const CommonSampleRate = 44100 // Output sample rate for every synthesized pulse

// ErrUnavailable is returned when there is no working audio output.
var ErrUnavailable = errors.New("audio output unavailable")

// Manager mixes concurrently playing streamers into the output backend.
type Manager struct {
	mu        sync.Mutex
	mix       *beep.Mixer
	format    beep.Format
	muted     bool
	closed    bool
	vol       *effects.Volume // master volume
	backend   any
	pulseCtrl *pulseControl
}

func newManager(sampleRate beep.SampleRate) *Manager {
	mgr := &Manager{
		mix:    &beep.Mixer{},
		format: beep.Format{SampleRate: sampleRate, NumChannels: 1, Precision: 2},
	}
	mgr.vol = &effects.Volume{
		Streamer: mgr.mix,
		Base:     2,
		Volume:   0, // 0 dB
		Silent:   false,
	}
	return mgr
}

// NewManager opens the audio backend. The returned error wraps ErrUnavailable.
func NewManager(sampleRate beep.SampleRate) (*Manager, error) {
	mgr := newManager(sampleRate)
	bufferSize := sampleRate.N(time.Second / 100)
	if err := mgr.initBackend(sampleRate, bufferSize); err != nil {
		log.Warnf("audio backend init failed: %v", err)
		return nil, errors.WithMessage(ErrUnavailable, err.Error())
	}
	log.Info("audio backend ready")
	return mgr, nil
}

// SampleRate reports the output sample rate.
func (mgr *Manager) SampleRate() beep.SampleRate {
	return mgr.format.SampleRate
}

// Play adds s to the mix. It returns immediately; s plays until it drains.
func (mgr *Manager) Play(s beep.Streamer) error {
	if mgr == nil {
		return ErrUnavailable
	}
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	if mgr.closed {
		return errors.WithMessage(ErrUnavailable, "manager closed")
	}
	mgr.mix.Add(s)
	return nil
}

// Active reports how many streamers are still in the mix.
func (mgr *Manager) Active() int {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.mix.Len()
}

// Stream pulls the mixed output. Backends read from here; it never ends.
func (mgr *Manager) Stream(buf [][2]float64) (int, bool) {
	mgr.mu.Lock()
	n, _ := mgr.vol.Stream(buf)
	mgr.mu.Unlock()
	for i := n; i < len(buf); i++ {
		buf[i][0], buf[i][1] = 0, 0
	}
	return len(buf), true
}

func (mgr *Manager) Err() error { return nil }

func (mgr *Manager) SetMasterVolume(db float64) {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.vol.Volume = db
}

// Mute silences output. Streamers keep draining so nothing piles up.
func (mgr *Manager) Mute() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.muted = true
	mgr.vol.Silent = true
}

// Unmute enables audio output.
func (mgr *Manager) Unmute() {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	mgr.muted = false
	mgr.vol.Silent = false
}

func (mgr *Manager) Muted() bool {
	mgr.mu.Lock()
	defer mgr.mu.Unlock()
	return mgr.muted
}

// Close stops the backend and frees resources. Later Play calls fail.
func (mgr *Manager) Close() {
	if mgr == nil {
		return
	}
	mgr.mu.Lock()
	if mgr.closed {
		mgr.mu.Unlock()
		return
	}
	mgr.closed = true
	mgr.mix.Clear()
	mgr.mu.Unlock()

	if mgr.backend != nil {
		mgr.closeBackend()
	}
}
