package app

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle     key.Binding
	Slower     key.Binding
	Faster     key.Binding
	MuchSlower key.Binding
	MuchFaster key.Binding
	Sound      key.Binding
	NextSound  key.Binding
	Accent     key.Binding
	Phase      key.Binding
	Mute       key.Binding
	About      key.Binding
	Quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Toggle:     key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "start/stop")),
		Slower:     key.NewBinding(key.WithKeys("left", "h", "-"), key.WithHelp("←", "-1 bpm")),
		Faster:     key.NewBinding(key.WithKeys("right", "l", "+", "="), key.WithHelp("→", "+1 bpm")),
		MuchSlower: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓", "-10 bpm")),
		MuchFaster: key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑", "+10 bpm")),
		Sound:      key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "sound")),
		NextSound:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next sound")),
		Accent:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "accent")),
		Phase:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "keep phase")),
		Mute:       key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "mute")),
		About:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "about")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Slower, k.Faster, k.Sound, k.About, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Slower, k.Faster, k.MuchSlower, k.MuchFaster},
		{k.Sound, k.NextSound, k.Accent, k.Phase, k.Mute},
		{k.About, k.Quit},
	}
}
