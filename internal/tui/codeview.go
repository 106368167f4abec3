package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/firecrawl/appgen/internal/generator"
	"github.com/firecrawl/appgen/internal/viewer"
)

const previewNote = "This is a placeholder for the application preview. In a real implementation, this would show a live preview of your generated application."

// CodeView renders the viewer: a tab strip over highlighted code, or the
// preview placeholder box.
type CodeView struct {
	v        viewer.Viewer
	vp       viewport.Model
	style    string
	focused  bool
	rendered string // active file the viewport currently holds
}

func NewCodeView(codeStyle string) CodeView {
	return CodeView{
		vp:    viewport.New(0, 0),
		style: codeStyle,
	}
}

func (m *CodeView) Focus() { m.focused = true }

func (m *CodeView) Blur() { m.focused = false }

func (m CodeView) Focused() bool { return m.focused }

func (m *CodeView) SetSize(w, h int) {
	m.vp.Width = w
	m.vp.Height = h
	m.rendered = ""
	m.refresh()
}

// Sync loads a new file set (activating its first file) and applies mode.
func (m *CodeView) Sync(files *generator.FileSet, mode viewer.Mode) {
	if m.v.Sync(files) {
		m.rendered = ""
	}
	m.v.SetMode(mode)
	m.refresh()
}

// Active is the active filename, "" before the first generation.
func (m CodeView) Active() string { return m.v.Active() }

func (m CodeView) Mode() viewer.Mode { return m.v.Mode() }

func (m *CodeView) refresh() {
	if m.v.Active() == "" || m.rendered == m.v.Active() {
		return
	}
	out, _ := viewer.HighlightTerminal(m.v.Active(), m.v.Content(), m.style)
	m.vp.SetContent(out)
	m.vp.GotoTop()
	m.rendered = m.v.Active()
}

func (m CodeView) Update(msg tea.Msg) (CodeView, tea.Cmd) {
	if !m.focused || m.v.Active() == "" {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "left", "h":
			m.v.Step(-1)
			m.refresh()
			return m, nil
		case "right", "l":
			m.v.Step(1)
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m CodeView) View(th Theme, width int) string {
	header := th.PanelTitle.Render("Generated Application")

	var body string
	switch {
	case m.v.Active() == "":
		body = lipgloss.Place(width-4, m.vp.Height, lipgloss.Center, lipgloss.Center,
			th.SubtleText.Render(viewer.EmptyText))
	case m.v.Mode() == viewer.Preview:
		body = m.previewView(th, width)
	default:
		body = m.codeView(th)
	}

	panel := th.Panel
	if m.focused {
		panel = th.FocusedPanel
	}
	return panel.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, header, body))
}

func (m CodeView) codeView(th Theme) string {
	var tabs []string
	for _, t := range m.v.Tabs() {
		if t.Active {
			tabs = append(tabs, th.ActiveTab.Render(t.Name))
		} else {
			tabs = append(tabs, th.Tab.Render(t.Name))
		}
	}
	strip := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	return lipgloss.JoinVertical(lipgloss.Left, strip, m.vp.View())
}

func (m CodeView) previewView(th Theme, width int) string {
	inner := width - 8
	if inner < 20 {
		inner = 20
	}
	var b strings.Builder
	b.WriteString(th.PreviewHeader.Render("Preview Mode"))
	b.WriteString("\n\n")
	b.WriteString(th.SubtleText.Width(inner).Render(previewNote))
	b.WriteString("\n\n")
	b.WriteString(th.PreviewBox.Width(inner).Render(m.v.Preview()))
	return b.String()
}
