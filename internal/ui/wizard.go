package ui

import (
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/total70/journal-ai/internal/config"
)

// ErrCanceled is returned when the user aborts an interactive prompt.
var ErrCanceled = errors.New("canceled")

type step int

const (
	stepProvider step = iota
	stepModel
	stepDone
)

type providerChoice struct {
	id    config.Provider
	label string
}

var providerChoices = []providerChoice{
	{config.ProviderOllama, "Ollama (local, recommended for most users)"},
	{config.ProviderOpenAI, "OpenAI (cloud, requires " + config.APIKeyEnv + ")"},
}

// wizardModel asks for the default provider and its model.
type wizardModel struct {
	cfg      config.Config
	step     step
	cursor   int
	modelIn  textinput.Model
	canceled bool
}

func newWizardModel(base *config.Config) wizardModel {
	m := wizardModel{cfg: *base}
	for i, c := range providerChoices {
		if c.id == base.Provider {
			m.cursor = i
		}
	}
	m.modelIn = textinput.New()
	m.modelIn.Prompt = "> "
	return m
}

func (m wizardModel) Init() tea.Cmd { return nil }

func (m wizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "esc":
		m.canceled = true
		return m, tea.Quit
	}

	switch m.step {
	case stepProvider:
		switch key.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(providerChoices)-1 {
				m.cursor++
			}
		case "1", "2":
			m.cursor = int(key.Runes[0] - '1')
		case "enter":
			m.cfg.Provider = providerChoices[m.cursor].id
			m.modelIn.SetValue(m.cfg.Model())
			m.modelIn.CursorEnd()
			m.step = stepModel
			cmd := m.modelIn.Focus()
			return m, cmd
		}
		return m, nil

	case stepModel:
		if key.String() == "enter" {
			if model := strings.TrimSpace(m.modelIn.Value()); model != "" {
				if updated, err := m.cfg.WithOverrides("", model); err == nil {
					m.cfg = *updated
				}
			}
			m.step = stepDone
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.modelIn, cmd = m.modelIn.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m wizardModel) View() string {
	var b strings.Builder
	b.WriteString(styleHeader.Render("Welcome to journal-ai configuration!") + "\n\n")

	switch m.step {
	case stepProvider:
		b.WriteString("Select default provider:\n")
		for i, c := range providerChoices {
			marker := "  "
			line := c.label
			if i == m.cursor {
				marker = styleKey.Render("> ")
				line = styleLabel.Render(line)
			}
			b.WriteString(marker + line + "\n")
		}
		b.WriteString("\n" + styleMuted.Render("↑/↓ select • enter confirm • esc cancel") + "\n")
	case stepModel:
		b.WriteString("Model for " + string(m.cfg.Provider) + ":\n")
		b.WriteString(m.modelIn.View() + "\n")
		b.WriteString("\n" + styleMuted.Render("enter accept • esc cancel") + "\n")
	}
	return b.String()
}

// RunWizard interactively selects the provider and model starting from base.
// The returned config never carries a credential.
func RunWizard(base *config.Config, in io.Reader, out io.Writer) (*config.Config, error) {
	final, err := tea.NewProgram(newWizardModel(base), tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return nil, err
	}

	m := final.(wizardModel)
	if m.canceled {
		return nil, ErrCanceled
	}
	cfg := m.cfg
	cfg.OpenAI.APIKey = ""
	return &cfg, nil
}
