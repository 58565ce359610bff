package style

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	Accent = lipgloss.Color("#9333EA") // Purple
	Muted  = lipgloss.Color("241")
	Stop   = lipgloss.Color("#EF4444") // Red
)

var (
	// Main screen
	Tempo      = lipgloss.NewStyle().Bold(true).Foreground(Accent)
	TempoLabel = lipgloss.NewStyle().Foreground(Muted)
	BeatOn     = lipgloss.NewStyle().Foreground(Accent).Bold(true)
	BeatOff    = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	Label      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	SoundItem         = lipgloss.NewStyle().Padding(0, 2).Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("245"))
	SoundItemSelected = SoundItem.BorderForeground(Accent).Foreground(Accent).Bold(true)

	StartButton = lipgloss.NewStyle().Bold(true).Padding(0, 6).Foreground(lipgloss.Color("255")).Background(Accent)
	StopButton  = StartButton.Background(Stop)

	Status = lipgloss.NewStyle().Foreground(Muted)
	Error  = lipgloss.NewStyle().Foreground(Stop)

	// Page styles
	TopPattern = lipgloss.NewStyle().Foreground(Accent)
	Title      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("228")) // Bright yellow
	Content    = lipgloss.NewStyle()
	Footer     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)
