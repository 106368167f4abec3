package tui

import (
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PromptChangedMsg carries the editor text after every edit.
type PromptChangedMsg struct {
	Text string
}

// SubmitMsg is the submit intent (Enter in the editor or the generate key).
type SubmitMsg struct{}

const promptPlaceholder = "Describe your application in detail... (e.g. 'A todo app with categories, dark mode, and local storage')"

const promptHint = "Be specific about features, design, technologies, and functionality you want to include."

// PromptEditor is a pass-through text area. Its only own state is focus,
// used for the border highlight. While disabled it rejects input.
type PromptEditor struct {
	input    textarea.Model
	disabled bool
}

func NewPromptEditor() PromptEditor {
	ta := textarea.New()
	ta.Placeholder = promptPlaceholder
	ta.Prompt = " "
	ta.CharLimit = 2000
	ta.ShowLineNumbers = false
	ta.SetHeight(4)
	// Enter submits; newlines need alt+enter or ctrl+j.
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	return PromptEditor{input: ta}
}

func (m *PromptEditor) Focus() tea.Cmd { return m.input.Focus() }

func (m *PromptEditor) Blur() { m.input.Blur() }

func (m PromptEditor) Focused() bool { return m.input.Focused() }

func (m *PromptEditor) SetDisabled(d bool) { m.disabled = d }

func (m PromptEditor) Disabled() bool { return m.disabled }

func (m *PromptEditor) SetWidth(w int) { m.input.SetWidth(w) }

func (m PromptEditor) Value() string { return m.input.Value() }

// SetValue replaces the text without emitting a change.
func (m *PromptEditor) SetValue(s string) {
	if m.input.Value() != s {
		m.input.SetValue(s)
	}
}

func (m PromptEditor) Update(msg tea.Msg) (PromptEditor, tea.Cmd) {
	key, isKey := msg.(tea.KeyMsg)
	if isKey {
		if !m.input.Focused() || m.disabled {
			return m, nil
		}
		if key.Type == tea.KeyEnter && !key.Alt {
			return m, func() tea.Msg { return SubmitMsg{} }
		}
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		return m, tea.Batch(cmd, func() tea.Msg { return PromptChangedMsg{Text: after} })
	}
	return m, cmd
}

func (m PromptEditor) View(th Theme, width int, spinner string) string {
	box := th.Input
	if m.input.Focused() {
		box = th.FocusedInput
	}

	body := m.input.View()
	if m.disabled {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, " ", spinner)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		th.PanelTitle.Render("What do you want to build?"),
		box.Width(width).Render(body),
		th.SubtleText.Width(width).Render(promptHint),
	)
}
