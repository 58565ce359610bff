// Package app is the terminal face of the metronome. It owns the audio output
// for the lifetime of the program, forwards key presses to the clock as
// commands and lights one of four dots per beat.
package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vinser/metronome/internal/clock"
	"github.com/vinser/metronome/internal/flags"
	"github.com/vinser/metronome/internal/log"
	"github.com/vinser/metronome/internal/model/about"
	"github.com/vinser/metronome/internal/profile"
	"github.com/vinser/metronome/internal/render"
	"github.com/vinser/metronome/internal/sound"
	"github.com/vinser/metronome/internal/style"
	"github.com/vinser/metronome/internal/tone"
)

const (
	width  = 48
	height = 22

	beatBuffer = 16
)

type status uint

const (
	statusMain status = iota
	statusAbout
)

// BeatMsg carries a clock beat into the update loop.
type BeatMsg clock.Beat

type Model struct {
	status  status
	version string
	clock   *clock.Clock
	audio   *sound.Manager // nil when running silent
	beats   chan clock.Beat

	current int  // dot to light
	lit     bool // false after a stop
	notice  string

	keys     keyMap
	help     help.Model
	tempoBar progress.Model
	about    about.Model

	// terminal size cache
	termWidth  int
	termHeight int
}

// New opens the audio output and builds a stopped clock configured from fl.
// Without a sound device, or with SKIP_AUDIO=1, the metronome runs silent.
func New(version string, fl flags.Flags) Model {
	var (
		mgr  *sound.Manager
		sink tone.Sink
	)
	if os.Getenv("SKIP_AUDIO") != "1" {
		var err error
		mgr, err = sound.NewManager(sound.CommonSampleRate)
		if err != nil {
			log.Warnf("running silent: %v", err)
			mgr = nil
		} else {
			sink = mgr
			if fl.Mute {
				mgr.Mute()
			}
		}
	}
	return newModel(version, fl, mgr, sink)
}

func newModel(version string, fl flags.Flags, mgr *sound.Manager, sink tone.Sink, opts ...clock.Option) Model {
	beats := make(chan clock.Beat, beatBuffer)
	observer := func(b clock.Beat) {
		// never block the scheduler on the UI
		select {
		case beats <- b:
		default:
			log.Warn("ui lagging, beat dropped from display")
		}
	}

	opts = append([]clock.Option{
		clock.WithTempo(fl.BPM),
		clock.WithSound(fl.Sound),
		clock.WithAccent(fl.Accent),
		clock.WithRetime(fl.Retime()),
		clock.WithObserver(observer),
	}, opts...)

	m := Model{
		status:   statusMain,
		version:  version,
		clock:    clock.New(tone.New(sink, sound.CommonSampleRate), opts...),
		audio:    mgr,
		beats:    beats,
		keys:     newKeyMap(),
		help:     help.New(),
		tempoBar: progress.New(progress.WithSolidFill(string(style.Accent)), progress.WithoutPercentage(), progress.WithWidth(width-8)),
	}
	if mgr == nil {
		m.notice = "no audio output, running silent"
	}
	if fl.AutoStart {
		m.clock.Start()
	}
	return m
}

func waitForBeat(ch <-chan clock.Beat) tea.Cmd {
	return func() tea.Msg {
		b, ok := <-ch
		if !ok {
			return nil
		}
		return BeatMsg(b)
	}
}

func (m Model) Init() tea.Cmd {
	return waitForBeat(m.beats)
}

// Clock exposes the clock for the host.
func (m Model) Clock() *clock.Clock {
	return m.clock
}

func (m Model) shutdown() {
	m.clock.Close()
	m.audio.Close()
	log.Info("shutdown")
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.shutdown()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		m.about.SetSize(msg.Width, msg.Height)
		return m, tea.ClearScreen
	case BeatMsg:
		m.current = msg.Index
		m.lit = !msg.Reset
		return m, waitForBeat(m.beats)
	}

	switch m.status {
	case statusAbout:
		switch msg.(type) {
		case about.CloseAboutMsg:
			m.status = statusMain
			return m, nil
		}
		var cmd tea.Cmd
		m.about, cmd = m.about.Update(msg)
		return m, cmd
	default:
		if msg, ok := msg.(tea.KeyMsg); ok {
			return m.handleKey(msg)
		}
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	st := m.clock.State()
	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.clock.Toggle()
	case key.Matches(msg, m.keys.Slower):
		m.clock.SetTempo(st.Tempo - 1)
	case key.Matches(msg, m.keys.Faster):
		m.clock.SetTempo(st.Tempo + 1)
	case key.Matches(msg, m.keys.MuchSlower):
		m.clock.SetTempo(st.Tempo - 10)
	case key.Matches(msg, m.keys.MuchFaster):
		m.clock.SetTempo(st.Tempo + 10)
	case key.Matches(msg, m.keys.Sound):
		ids := profile.IDs()
		idx := int(msg.String()[0] - '1')
		if err := m.clock.SetSound(ids[idx]); err != nil {
			m.notice = err.Error()
		}
	case key.Matches(msg, m.keys.NextSound):
		if err := m.clock.SetSound(profile.Next(st.Sound.ID).ID); err != nil {
			m.notice = err.Error()
		}
	case key.Matches(msg, m.keys.Accent):
		m.clock.SetAccent(!st.AccentFirstBeat)
	case key.Matches(msg, m.keys.Phase):
		if st.Retime == clock.RetimeRestart {
			m.clock.SetRetime(clock.RetimePreservePhase)
		} else {
			m.clock.SetRetime(clock.RetimeRestart)
		}
	case key.Matches(msg, m.keys.Mute):
		if m.audio == nil {
			m.notice = "no audio output"
		} else if m.audio.Muted() {
			m.audio.Unmute()
		} else {
			m.audio.Mute()
		}
	case key.Matches(msg, m.keys.About):
		m.status = statusAbout
		m.about = about.New(width, height)
		m.about.SetSize(m.termWidth, m.termHeight)
	}
	if !m.clock.Running() {
		m.lit = false
	}
	return m, nil
}

func (m Model) View() string {
	switch m.status {
	case statusAbout:
		return m.about.View()
	}
	st := m.clock.State()
	title := "Metronome"
	if m.version != "" {
		title += " " + m.version
	}
	return render.Page(title, m.mainView(st), m.help.View(m.keys), width, height, m.termWidth, m.termHeight)
}

func (m Model) mainView(st clock.State) string {
	tempo := lipgloss.JoinVertical(lipgloss.Center,
		style.Tempo.Render(fmt.Sprintf("%d", st.Tempo)),
		style.TempoLabel.Render("BPM"),
	)

	dots := make([]string, clock.MeasureLength)
	for i := range dots {
		if m.lit && st.Running && i == m.current {
			dots[i] = style.BeatOn.Render("●")
		} else {
			dots[i] = style.BeatOff.Render("○")
		}
	}

	fill := float64(st.Tempo-clock.MinTempo) / float64(clock.MaxTempo-clock.MinTempo)
	barWidth := width - 8
	bounds := fmt.Sprintf("%-*d%*d", barWidth/2, clock.MinTempo, barWidth-barWidth/2, clock.MaxTempo)
	slider := lipgloss.JoinVertical(lipgloss.Left,
		style.Label.Render("Tempo (BPM)"),
		m.tempoBar.ViewAs(fill),
		style.Label.Render(bounds),
	)

	var sounds []string
	for _, s := range profile.All() {
		if s.ID == st.Sound.ID {
			sounds = append(sounds, style.SoundItemSelected.Render(s.DisplayName))
		} else {
			sounds = append(sounds, style.SoundItem.Render(s.DisplayName))
		}
	}
	picker := lipgloss.JoinVertical(lipgloss.Left,
		style.Label.Render("Sound"),
		lipgloss.JoinHorizontal(lipgloss.Top, sounds...),
	)

	button := style.StartButton.Render("Start")
	if st.Running {
		button = style.StopButton.Render("Stop")
	}

	return lipgloss.JoinVertical(lipgloss.Center,
		tempo,
		"",
		strings.Join(dots, " "),
		"",
		slider,
		"",
		picker,
		"",
		button,
		"",
		m.statusLine(st),
	)
}

func (m Model) statusLine(st clock.State) string {
	var parts []string
	if st.AccentFirstBeat {
		parts = append(parts, "accent")
	}
	if st.Retime == clock.RetimePreservePhase {
		parts = append(parts, "keep phase")
	}
	if m.audio != nil && m.audio.Muted() {
		parts = append(parts, "muted")
	}
	line := style.Status.Render(strings.Join(parts, " · "))
	if m.notice != "" {
		line = lipgloss.JoinVertical(lipgloss.Center, line, style.Error.Render(m.notice))
	}
	return line
}
