// Command laudo-tui runs the dictation session in a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"laudo/internal/bootstrap"
	"laudo/internal/config"
	"laudo/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "laudo: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sink := tui.NewProgramSink()
	// stderr belongs to OSC 52; logs always go to a file here
	services, err := bootstrap.Build(sink, tui.NewClipboard(os.Stderr), bootstrap.WithLogFile(config.DefaultLogFile()))
	if err != nil {
		return err
	}
	defer services.Close()

	program := tea.NewProgram(
		tui.New(ctx, services.Session),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	sink.Attach(program.Send)

	_, err = program.Run()
	sink.Attach(nil)
	services.Session.Stop()
	if err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}
