// Package log writes diagnostics to a file in the log directory.
// The terminal belongs to the UI, so nothing is written to stdout or stderr.
// All helpers are no-ops until Init succeeds.
package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const envLogPath = "METRONOME_LOG_PATH"

var (
	diagLog  zerolog.Logger
	diagFile *os.File
	logMu    sync.Mutex
	logReady bool
	dir      string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absPath(flagPath)
	}

	// Priority 2: METRONOME_LOG_PATH environment variable
	if envPath := os.Getenv(envLogPath); envPath != "" {
		return absPath(envPath)
	}

	// Priority 3: user config dir
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "metronome", "logs"), nil
}

func absPath(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create log directory")
	}
	return nil
}

// Init opens diagnostics_log.txt in the log directory.
func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "diagnostics_log.txt"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	diagFile = f
	setOutput(f)
	return nil
}

// InitWriter sends diagnostics to w instead of a file.
func InitWriter(w io.Writer) {
	logMu.Lock()
	defer logMu.Unlock()
	setOutput(w)
}

func setOutput(w io.Writer) {
	consoleWriter := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "2006-01-02 15:04:05.000",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", os.Getpid()).Logger().Level(zerolog.InfoLevel)
	logReady = true
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	logReady = false
}

// SetDebug enables per-beat tracing.
func SetDebug(on bool) {
	if on {
		diagLog = diagLog.Level(zerolog.DebugLevel)
	} else {
		diagLog = diagLog.Level(zerolog.InfoLevel)
	}
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Debug(msg string) {
	if logReady {
		diagLog.Debug().Msg(msg)
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

// Command records a clock command and the state it left behind.
func Command(name string, running bool, bpm int, sound string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("cmd", name).
		Bool("running", running).
		Int("bpm", bpm).
		Str("sound", sound).
		Msg("command")
}

// Retimed records a schedule re-arm.
func Retimed(reason string, period, first time.Duration) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Str("reason", reason).
		Dur("period", period).
		Dur("first", first).
		Msg("retimed")
}

// Beat traces a single tick. Only visible with SetDebug(true).
func Beat(index int, freq float64, late time.Duration) {
	if !logReady {
		return
	}
	diagLog.Debug().
		Int("beat", index).
		Float64("hz", freq).
		Dur("late", late).
		Msg("beat")
}
