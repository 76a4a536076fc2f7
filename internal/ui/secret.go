package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type secretModel struct {
	label    string
	input    textinput.Model
	done     bool
	canceled bool
}

func newSecretModel(label string) secretModel {
	in := textinput.New()
	in.Prompt = "> "
	in.Placeholder = "sk-..."
	in.EchoMode = textinput.EchoPassword
	in.EchoCharacter = '•'
	in.Focus()
	return secretModel{label: label, input: in}
}

func (m secretModel) Init() tea.Cmd { return textinput.Blink }

func (m secretModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+c", "esc":
			m.canceled = true
			return m, tea.Quit
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m secretModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	return styleLabel.Render(m.label) + "\n" + m.input.View() + "\n" +
		styleMuted.Render("input is hidden • enter confirm • esc cancel") + "\n"
}

func (m secretModel) value() string {
	return strings.TrimSpace(m.input.Value())
}

// PromptSecret reads a credential with masked echo. An empty answer is
// returned as "" without error.
func PromptSecret(label string, in io.Reader, out io.Writer) (string, error) {
	final, err := tea.NewProgram(newSecretModel(label), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return "", err
	}

	m := final.(secretModel)
	if m.canceled {
		return "", ErrCanceled
	}
	return m.value(), nil
}
