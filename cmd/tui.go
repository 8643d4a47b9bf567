package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shelf/internal/shared"
	"github.com/desertthunder/shelf/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive favorites browser.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	member, err := r.requireMember(ctx)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/shelf-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}

	// child loggers keep their writer, so the browser gets its own client stack
	tr := NewRunner(RunnerOpts{
		Config:     r.config,
		ConfigPath: r.configPath,
		Session:    r.session,
		Prefs:      r.prefs,
		Logger:     fileLogger,
		Output:     r.output,
	})
	defer tr.Close()

	model := ui.NewModel(ctx, ui.Opts{
		Backend:  tr.backend,
		Engine:   tr.engine,
		Bus:      tr.bus,
		Cache:    tr.cache,
		MemberID: member.ID,
		Handle:   member.Handle,
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
