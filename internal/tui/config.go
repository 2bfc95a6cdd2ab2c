package tui

import (
	"io"
	"os"

	"github.com/Veraticus/the-spice-must-tally/internal/tui/themes"
)

// Config holds TUI configuration.
type Config struct {
	Input     io.Reader
	Output    io.Writer
	Theme     themes.Theme
	Title     string
	Width     int
	Height    int
	AltScreen bool
	ShowHelp  bool
}

// Option is a functional option for configuring the TUI.
type Option func(*Config)

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		Input:     os.Stdin,
		Output:    os.Stdout,
		Theme:     themes.Default,
		Title:     "Map statement columns",
		Width:     80,
		Height:    24,
		AltScreen: true,
		ShowHelp:  false,
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme themes.Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithIO replaces the terminal streams, disabling the alternate screen.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *Config) {
		c.Input = in
		c.Output = out
		c.AltScreen = false
	}
}

// WithTitle sets the heading shown above the column list.
func WithTitle(title string) Option {
	return func(c *Config) {
		c.Title = title
	}
}
