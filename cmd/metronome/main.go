package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/vinser/metronome/internal/app"
	"github.com/vinser/metronome/internal/flags"
	"github.com/vinser/metronome/internal/log"
)

var version = "dev"

func main() {
	fl, err := flags.Parse(os.Args[0], os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if fl.Version {
		fmt.Println(version)
		return
	}

	if dir, err := log.ResolveDir(fl.LogPath); err == nil {
		log.SetDir(dir)
		if err := log.Init(); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: diagnostics log disabled:", err)
		}
	}
	defer log.Close()
	log.SetDebug(fl.Debug)
	log.Info("metronome " + version + " starting")

	p := tea.NewProgram(app.New(version, fl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Errorf("program: %v", err)
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
