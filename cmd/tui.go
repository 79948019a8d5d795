package main

import (
	"context"
	"fmt"

	"github.com/Llewe/plex-playlist-sync/internal/shared"
	"github.com/Llewe/plex-playlist-sync/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist syncing.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.source(cmd.String("source"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/plex-playlist-sync-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	conn, err := r.dialPlex(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to plex: %w", err)
	}

	engine, err := r.buildEngine(conn)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, svc, engine, r.config.Sync)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
