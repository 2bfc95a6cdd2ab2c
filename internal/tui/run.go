package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	tea "github.com/charmbracelet/bubbletea"
)

var (
	// ErrCanceled is returned when the user quits the picker.
	ErrCanceled = errors.New("column selection canceled")
	// ErrNoColumns is returned when there is nothing to pick from.
	ErrNoColumns = errors.New("statement has no columns")
)

// PickColumns asks the user which of columns hold the serial, remarks,
// withdrawal and deposit values, starting from initial.
func PickColumns(ctx context.Context, columns []string, initial classification.Fields, opts ...Option) (classification.Fields, error) {
	if len(columns) == 0 {
		return classification.Fields{}, ErrNoColumns
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(cfg.Input),
		tea.WithOutput(cfg.Output),
	}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	p := tea.NewProgram(NewModel(columns, initial, opts...), programOpts...)
	final, err := p.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return classification.Fields{}, ctxErr
		}
		return classification.Fields{}, fmt.Errorf("column picker failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok || !m.Done() {
		return classification.Fields{}, ErrCanceled
	}
	return m.Fields(), nil
}
