package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var choiceStyle = lipgloss.NewStyle().Padding(0, 2)

type confirmKeyMap struct {
	Toggle key.Binding
	Yes    key.Binding
	No     key.Binding
	Accept key.Binding
	Cancel key.Binding
}

var confirmKeys = confirmKeyMap{
	Toggle: key.NewBinding(key.WithKeys("left", "right", "tab", "h", "l"), key.WithHelp("←/→", "select")),
	Yes:    key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
	No:     key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "no")),
	Accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
	Cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c", "q"), key.WithHelp("esc", "cancel")),
}

// Decision is the outcome of a yes/no prompt.
type Decision int

const (
	DecisionNo Decision = iota
	DecisionYes
	DecisionCancelled
)

// confirmModel asks a single yes/no question. It starts on "No" since the
// questions it asks start remote work.
type confirmModel struct {
	question string
	yes      bool
	decision Decision
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{question: question, decision: DecisionCancelled}
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, confirmKeys.Cancel):
		m.decision = DecisionCancelled
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.Toggle):
		m.yes = !m.yes
	case key.Matches(keyMsg, confirmKeys.Yes):
		m.yes = true
		m.decision = DecisionYes
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.No):
		m.yes = false
		m.decision = DecisionNo
		return m, tea.Quit
	case key.Matches(keyMsg, confirmKeys.Accept):
		m.decision = DecisionNo
		if m.yes {
			m.decision = DecisionYes
		}
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	yes, no := choiceStyle, choiceStyle
	highlight := func(s lipgloss.Style) lipgloss.Style {
		return s.Background(lipgloss.Color("212")).Foreground(lipgloss.Color("0"))
	}
	if m.yes {
		yes = highlight(yes)
	} else {
		no = highlight(no)
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.question) + "\n\n")
	sb.WriteString(fmt.Sprintf("  %s  %s\n\n", yes.Render("Yes"), no.Render("No")))
	sb.WriteString(helpStyle.Render("←/→: select • enter: confirm • y/n: answer • esc: cancel"))
	return sb.String()
}

// Confirm asks question on the terminal and blocks for the answer.
func Confirm(question string) (Decision, error) {
	final, err := tea.NewProgram(newConfirmModel(question)).Run()
	if err != nil {
		return DecisionCancelled, err
	}
	return final.(confirmModel).decision, nil
}
