package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/firecrawl/appgen/internal/catalog"
)

// TemplateSelectedMsg is emitted when the user picks a template.
type TemplateSelectedMsg struct {
	ID string
}

// TemplateSelector lists the catalog and marks the selected entry.
// "/" starts a fuzzy filter over names and tags.
type TemplateSelector struct {
	all       []catalog.Template
	visible   []catalog.Template
	cursor    int
	selected  string
	focused   bool
	filtering bool
	filter    textinput.Model
}

func NewTemplateSelector() TemplateSelector {
	ti := textinput.New()
	ti.Placeholder = "filter templates..."
	ti.Prompt = "/ "
	ti.CharLimit = 40

	all := catalog.All()
	return TemplateSelector{
		all:     all,
		visible: all,
		filter:  ti,
	}
}

func (m *TemplateSelector) Focus() { m.focused = true }

func (m *TemplateSelector) Blur() {
	m.focused = false
	m.stopFilter()
}

func (m TemplateSelector) Focused() bool { return m.focused }

// SetSelected marks id as the selected entry ("" for none).
func (m *TemplateSelector) SetSelected(id string) { m.selected = id }

func (m TemplateSelector) Selected() string { return m.selected }

// Visible returns the entries currently listed.
func (m TemplateSelector) Visible() []catalog.Template { return m.visible }

func (m TemplateSelector) Cursor() int { return m.cursor }

func (m *TemplateSelector) stopFilter() {
	m.filtering = false
	m.filter.Reset()
	m.filter.Blur()
	m.visible = m.all
	m.cursor = 0
}

func (m TemplateSelector) Update(msg tea.Msg) (TemplateSelector, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}

	if m.filtering {
		switch key.String() {
		case "esc":
			m.stopFilter()
			return m, nil
		case "enter":
			return m, m.choose()
		case "up", "down":
			m.move(key.String())
			return m, nil
		}
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.visible = catalog.Search(m.filter.Value())
		if m.cursor >= len(m.visible) {
			m.cursor = 0
		}
		return m, cmd
	}

	switch key.String() {
	case "up", "k", "down", "j":
		m.move(key.String())
	case "enter", " ":
		return m, m.choose()
	case "/":
		m.filtering = true
		return m, m.filter.Focus()
	}
	return m, nil
}

func (m *TemplateSelector) move(dir string) {
	if len(m.visible) == 0 {
		return
	}
	switch dir {
	case "up", "k":
		m.cursor = (m.cursor - 1 + len(m.visible)) % len(m.visible)
	case "down", "j":
		m.cursor = (m.cursor + 1) % len(m.visible)
	}
}

func (m *TemplateSelector) choose() tea.Cmd {
	if m.cursor >= len(m.visible) {
		return nil
	}
	id := m.visible[m.cursor].ID
	m.selected = id
	return func() tea.Msg { return TemplateSelectedMsg{ID: id} }
}

func (m TemplateSelector) View(th Theme, width int) string {
	var b strings.Builder
	b.WriteString(th.PanelTitle.Render("Choose a Template"))
	b.WriteString("\n")

	if m.filtering {
		b.WriteString(m.filter.View())
		b.WriteString("\n")
	}
	if len(m.visible) == 0 {
		b.WriteString(th.SubtleText.Render("  no matching templates"))
	}

	for i, t := range m.visible {
		marker := "  "
		style := th.Item
		switch {
		case t.ID == m.selected:
			marker = "● "
			style = th.SelectedItem
		case m.focused && i == m.cursor:
			marker = "› "
			style = th.CursorItem
		}
		if m.focused && i == m.cursor && t.ID == m.selected {
			marker = "›●"
		}

		b.WriteString(style.Render(marker + t.Name))
		b.WriteString("\n")
		b.WriteString(th.SubtleText.Render("    " + truncate(t.Description, width-6)))
		b.WriteString("\n")
		b.WriteString(th.Tag.Render("    " + strings.Join(t.Tags, " · ")))
		b.WriteString("\n")
	}

	panel := th.Panel
	if m.focused {
		panel = th.FocusedPanel
	}
	return panel.Width(width).Render(strings.TrimRight(b.String(), "\n"))
}

func truncate(s string, n int) string {
	if n <= 3 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
