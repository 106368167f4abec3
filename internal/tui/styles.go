package tui

import "github.com/charmbracelet/lipgloss"

// Color Palette (Dracula-inspired for dark, paper tones for light)
var (
	colorPurple = lipgloss.Color("#BD93F9")
	colorCyan   = lipgloss.Color("#8BE9FD")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorRed    = lipgloss.Color("#FF5555")
	colorPink   = lipgloss.Color("#FF79C6")
	colorGray   = lipgloss.Color("#6272A4")
	colorYellow = lipgloss.Color("#F1FA8C")

	colorInk      = lipgloss.Color("#1E293B")
	colorSlate    = lipgloss.Color("#64748B")
	colorViolet   = lipgloss.Color("#7C3AED")
	colorDarkText = lipgloss.Color("#282a36")
)

// Theme is the set of styles for one colour scheme. The header toggle
// swaps the whole value.
type Theme struct {
	Dark bool

	Accent lipgloss.Color
	Subtle lipgloss.Color

	Title        lipgloss.Style
	Badge        lipgloss.Style
	Panel        lipgloss.Style
	FocusedPanel lipgloss.Style
	PanelTitle   lipgloss.Style

	Input        lipgloss.Style
	FocusedInput lipgloss.Style

	Item         lipgloss.Style
	SelectedItem lipgloss.Style
	CursorItem   lipgloss.Style
	Tag          lipgloss.Style

	Tab       lipgloss.Style
	ActiveTab lipgloss.Style

	Button         lipgloss.Style
	DisabledButton lipgloss.Style

	PreviewHeader lipgloss.Style
	PreviewBox    lipgloss.Style

	SubtleText lipgloss.Style
	Loading    lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
}

// NewTheme builds the dark or light theme.
func NewTheme(dark bool) Theme {
	accent, subtle, text := colorViolet, colorSlate, colorInk
	if dark {
		accent, subtle, text = colorPurple, colorGray, lipgloss.Color("#F8F8F2")
	}

	panel := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(subtle).
		Padding(0, 1)

	input := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(subtle).
		Padding(0, 1)

	t := Theme{
		Dark:   dark,
		Accent: accent,
		Subtle: subtle,

		Title: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(0, 1),

		Badge: lipgloss.NewStyle().
			Foreground(colorDarkText).
			Background(colorPink).
			Padding(0, 1),

		Panel:        panel,
		FocusedPanel: panel.Copy().BorderForeground(accent),
		PanelTitle:   lipgloss.NewStyle().Foreground(text).Bold(true).MarginBottom(1),

		Input:        input,
		FocusedInput: input.Copy().BorderForeground(accent),

		Item:         lipgloss.NewStyle().Foreground(text).PaddingLeft(2),
		SelectedItem: lipgloss.NewStyle().Foreground(accent).Bold(true).PaddingLeft(1),
		CursorItem:   lipgloss.NewStyle().Foreground(colorCyan).PaddingLeft(1),
		Tag:          lipgloss.NewStyle().Foreground(subtle).Italic(true),

		Tab: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 2),
		ActiveTab: lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(0, 2).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(accent),

		Button: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(accent).
			Bold(true).
			Padding(0, 2),
		DisabledButton: lipgloss.NewStyle().
			Foreground(subtle).
			Padding(0, 2).
			Faint(true),

		PreviewHeader: lipgloss.NewStyle().
			Background(colorCyan).
			Foreground(colorDarkText).
			Bold(true).
			Padding(0, 2),
		PreviewBox: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtle).
			Padding(1, 2),

		SubtleText: lipgloss.NewStyle().Foreground(subtle),
		Loading:    lipgloss.NewStyle().Foreground(colorYellow).Bold(true),
		Error:      lipgloss.NewStyle().Foreground(colorRed).Bold(true),
		Success:    lipgloss.NewStyle().Foreground(colorGreen).Bold(true),
	}
	return t
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme { return NewTheme(!t.Dark) }

// Name is "dark" or "light".
func (t Theme) Name() string {
	if t.Dark {
		return "dark"
	}
	return "light"
}
