package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/ytingest/internal/shared"
	"github.com/desertthunder/ytingest/internal/ui"
	"github.com/urfave/cli/v3"
)

// Watch launches the interactive task dashboard against a running server.
func (r *Runner) Watch(ctx context.Context, cmd *cli.Command) error {
	logPath := cmd.String("log-file")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, closer, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer closer.Close()
	r.SetLogger(fileLogger)

	model := ui.NewModel(ctx, r.client(cmd), cmd.Duration("interval"))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
