//go:build linux
// +build linux

package sound

import (
	"sync/atomic"

	"github.com/gopxl/beep/v2"
	"github.com/jfreymuth/pulse"
	"github.com/pkg/errors"
)

type pulseBackend struct {
	client *pulse.Client
	stream *pulse.PlaybackStream
}

// pulseControl wraps a beep.Streamer and allows immediate stop
// by setting the stopped flag.
type pulseControl struct {
	streamer beep.Streamer
	stopped  atomic.Bool
}

func (pc *pulseControl) Stream(buf [][2]float64) (n int, ok bool) {
	if pc.stopped.Load() {
		for i := range buf {
			buf[i][0], buf[i][1] = 0, 0
		}
		return len(buf), true
	}
	return pc.streamer.Stream(buf)
}

func (pc *pulseControl) Err() error { return nil }

// beepToFloat32Func returns a func([]float32) (int, error) that pulls from a beep.Streamer
func beepToFloat32Func(ctrl *pulseControl, channels int) func([]float32) (int, error) {
	buf := make([][2]float64, 512)
	return func(out []float32) (int, error) {
		frames := len(out) / channels
		if frames > len(buf) {
			frames = len(buf)
		}
		n, ok := ctrl.Stream(buf[:frames])
		if !ok {
			return 0, pulse.EndOfData
		}
		idx := 0
		for i := 0; i < n; i++ {
			for ch := 0; ch < channels; ch++ {
				out[idx] = float32(buf[i][ch])
				idx++
			}
		}
		return idx, nil
	}
}

// initBackend connects to PulseAudio and starts pulling from the mixer.
func (mgr *Manager) initBackend(sampleRate beep.SampleRate, bufferSize int) error {
	client, err := pulse.NewClient()
	if err != nil {
		return errors.Wrap(err, "pulse client")
	}

	ctrl := &pulseControl{streamer: mgr}
	latency := sampleRate.D(bufferSize).Seconds()
	stream, err := client.NewPlayback(
		pulse.Float32Reader(beepToFloat32Func(ctrl, mgr.format.NumChannels)),
		pulse.PlaybackMono,
		pulse.PlaybackSampleRate(int(sampleRate)),
		pulse.PlaybackLatency(latency),
	)
	if err != nil {
		client.Close()
		return errors.Wrap(err, "pulse playback")
	}

	stream.Start()

	mgr.backend = &pulseBackend{
		client: client,
		stream: stream,
	}
	mgr.pulseCtrl = ctrl
	return nil
}

// closeBackend silences the stream and disconnects from PulseAudio.
func (mgr *Manager) closeBackend() {
	if mgr.pulseCtrl != nil {
		mgr.pulseCtrl.stopped.Store(true)
	}
	if pb, ok := mgr.backend.(*pulseBackend); ok {
		pb.stream.Stop()
		pb.stream.Close()
		pb.client.Close()
	}
}
