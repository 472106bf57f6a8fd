package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmModel is a yes/no prompt. The selection starts on "No".
type ConfirmModel struct {
	question  string
	detail    string
	selected  bool // true when "Yes" is highlighted
	confirmed bool
	done      bool
	keys      keyMap
	help      help.Model
}

// NewConfirmModel creates a prompt for question, with detail shown underneath.
func NewConfirmModel(question, detail string) ConfirmModel {
	return ConfirmModel{
		question: question,
		detail:   detail,
		keys:     newKeyMap(),
		help:     help.New(),
	}
}

func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || m.done {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.yes):
		return m.finish(true)
	case key.Matches(keyMsg, m.keys.no), key.Matches(keyMsg, m.keys.quit):
		return m.finish(false)
	case key.Matches(keyMsg, m.keys.enter):
		return m.finish(m.selected)
	case key.Matches(keyMsg, m.keys.toggle):
		m.selected = !m.selected
	}
	return m, nil
}

func (m ConfirmModel) finish(answer bool) (tea.Model, tea.Cmd) {
	m.confirmed = answer
	m.selected = answer
	m.done = true
	return m, tea.Quit
}

func (m ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(m.question))
	b.WriteString("\n")
	if m.detail != "" {
		b.WriteString(styles.warn.Render(m.detail))
		b.WriteString("\n\n")
	}

	yes, no := "  Yes  ", "  No  "
	if m.selected {
		yes = styles.selected.Render("> Yes <")
	} else {
		no = styles.selected.Render("> No <")
	}
	b.WriteString(fmt.Sprintf("%s   %s\n", yes, no))

	if m.done {
		return b.String()
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Confirmed reports the final answer.
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Done reports whether an answer was given.
func (m ConfirmModel) Done() bool {
	return m.done
}

// Confirm runs the prompt on in/out and returns the answer.
func Confirm(in io.Reader, out io.Writer, question, detail string) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(question, detail), tea.WithInput(in), tea.WithOutput(out))

	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}

	m, ok := final.(ConfirmModel)
	if !ok {
		return false, nil
	}
	return m.Confirmed(), nil
}
