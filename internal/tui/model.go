// Package tui provides the interactive column picker used when a statement's
// headers do not match the configured column names.
package tui

import (
	"fmt"
	"slices"

	"github.com/Veraticus/the-spice-must-tally/internal/classification"
	"github.com/Veraticus/the-spice-must-tally/internal/tui/themes"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// role is one statement column the classifier needs.
type role struct {
	field func(*classification.Fields) *string
	label string
	hint  string
}

var roles = []role{
	{
		label: "Serial number",
		hint:  "numeric row counter that marks the transaction block",
		field: func(f *classification.Fields) *string { return &f.Serial },
	},
	{
		label: "Remarks",
		hint:  "free text searched for taxonomy keywords",
		field: func(f *classification.Fields) *string { return &f.Remarks },
	},
	{
		label: "Withdrawal amount",
		hint:  "money going out of the account",
		field: func(f *classification.Fields) *string { return &f.Withdrawal },
	},
	{
		label: "Deposit amount",
		hint:  "money coming into the account",
		field: func(f *classification.Fields) *string { return &f.Deposit },
	},
}

// Model holds the column picker state.
type Model struct {
	theme    themes.Theme
	help     help.Model
	keymap   KeyMap
	title    string
	message  string
	columns  []string
	fields   classification.Fields
	step     int
	cursor   int
	width    int
	height   int
	done     bool
	quitting bool
}

// NewModel creates a picker over columns with initial as the suggested mapping.
func NewModel(columns []string, initial classification.Fields, opts ...Option) Model {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := Model{
		theme:   cfg.Theme,
		help:    h,
		keymap:  DefaultKeyMap(),
		title:   cfg.Title,
		columns: columns,
		fields:  initial,
		width:   cfg.Width,
		height:  cfg.Height,
	}
	m.cursor = m.suggested()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.columns)-1 {
			m.cursor++
		}

	case key.Matches(msg, m.keymap.Home):
		m.cursor = 0

	case key.Matches(msg, m.keymap.End):
		m.cursor = max(len(m.columns)-1, 0)

	case key.Matches(msg, m.keymap.Back):
		if m.step > 0 {
			m.step--
			m.message = ""
			m.cursor = m.suggested()
		}

	case key.Matches(msg, m.keymap.Select):
		return m.assign()
	}
	return m, nil
}

// assign maps the column under the cursor to the current role.
func (m Model) assign() (tea.Model, tea.Cmd) {
	if len(m.columns) == 0 {
		return m, nil
	}
	column := m.columns[m.cursor]
	for i := 0; i < m.step; i++ {
		if *roles[i].field(&m.fields) == column {
			m.message = fmt.Sprintf("%q is already the %s column", column, roles[i].label)
			return m, nil
		}
	}

	*roles[m.step].field(&m.fields) = column
	m.message = ""
	m.step++
	if m.step == len(roles) {
		m.done = true
		return m, tea.Quit
	}
	m.cursor = m.suggested()
	return m, nil
}

// suggested returns the cursor position of the current role's column, or 0.
func (m Model) suggested() int {
	if m.step >= len(roles) {
		return 0
	}
	current := *roles[m.step].field(&m.fields)
	if i := slices.Index(m.columns, current); i >= 0 {
		return i
	}
	return 0
}

// Fields returns the mapping chosen so far.
func (m Model) Fields() classification.Fields {
	return m.fields
}

// Done reports whether every column has been assigned.
func (m Model) Done() bool {
	return m.done
}

// Canceled reports whether the user quit before finishing.
func (m Model) Canceled() bool {
	return m.quitting && !m.done
}
