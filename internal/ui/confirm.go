// Package ui renders the interactive per-change confirmation prompt.
package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tsmend/internal/engine"
)

type keyMap struct {
	Yes  key.Binding
	No   key.Binding
	All  key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Yes:  key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "apply")),
	No:   key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
	All:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "apply all")),
	Quit: key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	oldStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	newStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	metaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type confirmModel struct {
	change   engine.Change
	decision engine.Decision
	width    int
}

func (m *confirmModel) Init() tea.Cmd {
	return nil
}

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Yes):
			m.decision = engine.DecisionYes
			return m, tea.Quit
		case key.Matches(msg, keys.No):
			m.decision = engine.DecisionNo
			return m, tea.Quit
		case key.Matches(msg, keys.All):
			m.decision = engine.DecisionAll
			return m, tea.Quit
		case key.Matches(msg, keys.Quit):
			m.decision = engine.DecisionQuit
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
	}
	return m, nil
}

func (m *confirmModel) View() string {
	c := m.change
	lineWidth := m.width - 4
	if lineWidth < 20 {
		lineWidth = 20
	}

	header := fmt.Sprintf("%s:%d", c.Path, c.Line)
	if c.Col > 0 {
		header = fmt.Sprintf("%s:%d:%d", c.Path, c.Line, c.Col)
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n")
	b.WriteString(oldStyle.Render("  - " + truncate(c.OldLine, lineWidth)))
	b.WriteString("\n")
	b.WriteString(newStyle.Render("  + " + truncate(c.NewLine, lineWidth)))
	b.WriteString("\n")
	b.WriteString(metaStyle.Render(fmt.Sprintf("  %s -> %s (%s confidence)", c.Reason, c.NewType, c.Band)))
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render("  y apply   n skip   a apply all   q quit"))
	b.WriteString("\n")
	return b.String()
}

// Prompt asks the operator about each change with a small Bubble Tea
// program. After "apply all" it stops asking for the rest of the run.
type Prompt struct {
	all bool
}

func NewPrompt() *Prompt {
	return &Prompt{}
}

func (p *Prompt) Confirm(change engine.Change) (engine.Decision, error) {
	if p.all {
		return engine.DecisionYes, nil
	}
	program := tea.NewProgram(&confirmModel{change: change, width: 80}, tea.WithOutput(os.Stdout))
	out, err := program.Run()
	if err != nil {
		return engine.DecisionQuit, err
	}
	m, ok := out.(*confirmModel)
	if !ok {
		return engine.DecisionQuit, fmt.Errorf("ui: unexpected model type %T", out)
	}
	if m.decision == engine.DecisionAll {
		p.all = true
		return engine.DecisionYes, nil
	}
	return m.decision, nil
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
