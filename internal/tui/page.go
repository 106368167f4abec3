package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/firecrawl/appgen/internal/controller"
	"github.com/firecrawl/appgen/internal/history"
	"github.com/firecrawl/appgen/internal/logging"
	"github.com/firecrawl/appgen/internal/project"
)

type focusArea int

const (
	focusTemplates focusArea = iota
	focusPrompt
	focusOutput
	focusCount
)

// Messages
type stateMsg controller.State

type exportedMsg struct {
	dir        string
	files      []string
	err        error
	historyErr error // the export itself still succeeded
}

// PageOptions configure the page. Zero values are usable.
type PageOptions struct {
	Theme      string         // "light" or "dark"
	CodeStyle  string         // chroma style name
	ExportRoot string         // directory exports are written under
	History    *history.Store // records exports when set
	Logger     *logrus.Logger
}

// PageModel is the whole generator page. It owns no generation state
// itself: every edit is forwarded to the controller, and the view is
// rebuilt from the snapshots the controller publishes.
type PageModel struct {
	ctrl    *controller.Controller
	updates chan controller.State
	detach  func()

	state    controller.State
	selector TemplateSelector
	prompt   PromptEditor
	code     CodeView
	spinner  spinner.Model
	helpView viewport.Model

	theme      Theme
	focus      focusArea
	showHelp   bool
	width      int
	height     int
	status     string
	statusErr  bool
	exportRoot string
	history    *history.Store
	log        *logrus.Entry
}

// NewPageModel mounts the page on ctrl. Call Detach when the page goes away.
func NewPageModel(ctrl *controller.Controller, opts PageOptions) PageModel {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.CodeStyle == "" {
		opts.CodeStyle = "dracula"
	}
	if opts.ExportRoot == "" {
		opts.ExportRoot = "."
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPink)

	hv := viewport.New(0, 0)
	hv.Style = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 2)

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	out, err := renderer.Render(PageHelp)
	if err != nil {
		out = PageHelp
	}
	hv.SetContent(out)

	updates := make(chan controller.State, 1)
	detach := ctrl.Subscribe(func(s controller.State) { offerLatest(updates, s) })

	m := PageModel{
		ctrl:       ctrl,
		updates:    updates,
		detach:     detach,
		state:      ctrl.Snapshot(),
		selector:   NewTemplateSelector(),
		prompt:     NewPromptEditor(),
		code:       NewCodeView(opts.CodeStyle),
		spinner:    sp,
		helpView:   hv,
		theme:      NewTheme(opts.Theme == "dark"),
		exportRoot: opts.ExportRoot,
		history:    opts.History,
		log:        opts.Logger.WithField("session", ctrl.ID()),
	}
	m.selector.Focus()
	return m
}

// offerLatest puts s on a one-slot channel, replacing any undelivered
// older snapshot. The controller serialises notifications, so there is a
// single producer.
func offerLatest(ch chan controller.State, s controller.State) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func waitForState(ch <-chan controller.State) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return stateMsg(s)
	}
}

// Detach stops listening to the controller. Safe to call more than once.
func (m PageModel) Detach() {
	if m.detach != nil {
		m.detach()
	}
}

func (m PageModel) Init() tea.Cmd {
	return tea.Batch(waitForState(m.updates), textarea.Blink)
}

func (m PageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case stateMsg:
		cmds = append(cmds, waitForState(m.updates), m.apply(controller.State(msg)))
		return m, tea.Batch(cmds...)

	case TemplateSelectedMsg:
		if err := m.ctrl.SelectTemplate(msg.ID); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setFocus(focusPrompt)
		return m, m.prompt.Focus()

	case PromptChangedMsg:
		if err := m.ctrl.SetPrompt(msg.Text); err != nil {
			m.setStatus(err.Error(), true)
		}
		return m, nil

	case SubmitMsg:
		if m.generateDisabled() {
			return m, nil
		}
		if m.ctrl.Submit() {
			m.setStatus("", false)
		}
		return m, nil

	case exportedMsg:
		if msg.err != nil {
			m.log.WithError(msg.err).Warn("Export failed")
			m.setStatus("Export failed: "+msg.err.Error(), true)
		} else {
			m.log.WithFields(logrus.Fields{"dir": msg.dir, "files": msg.files}).Info("Exported files")
			m.setStatus(fmt.Sprintf("Exported %d files to %s", len(msg.files), msg.dir), false)
		}
		if msg.historyErr != nil {
			m.log.WithError(msg.historyErr).Warn("Could not record export")
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.IsGenerating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.showHelp {
			var cmd tea.Cmd
			m.helpView, cmd = m.helpView.Update(msg)
			return m, cmd
		}
		if m.focus == focusOutput {
			var cmd tea.Cmd
			m.code, cmd = m.code.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	// blink and other component-internal messages
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m PageModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch msg.String() {
		case "esc", "?", "enter":
			m.showHelp = false
			return m, nil
		case "ctrl+c":
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.helpView, cmd = m.helpView.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		return m, m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "ctrl+t":
		m.theme = m.theme.Toggle()
		m.log.WithField("theme", m.theme.Name()).Debug("Theme toggled")
		return m, nil
	case "ctrl+g":
		return m, func() tea.Msg { return SubmitMsg{} }
	case "ctrl+p":
		if m.state.GeneratedFiles != nil {
			if err := m.ctrl.ToggleViewMode(); err != nil {
				m.setStatus(err.Error(), true)
			}
		}
		return m, nil
	case "ctrl+e":
		if m.state.GeneratedFiles == nil {
			return m, nil
		}
		return m, exportCmd(m.state, m.exportDir(), m.history)
	case "?":
		if m.focus != focusPrompt {
			m.showHelp = true
			m.helpView.GotoTop()
			return m, nil
		}
	case "esc":
		if m.focus != focusTemplates {
			return m, m.setFocus(focusTemplates)
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusTemplates:
		m.selector, cmd = m.selector.Update(msg)
	case focusPrompt:
		m.prompt, cmd = m.prompt.Update(msg)
	case focusOutput:
		m.code, cmd = m.code.Update(msg)
	}
	return m, cmd
}

// apply folds a controller snapshot into the view.
func (m *PageModel) apply(s controller.State) tea.Cmd {
	startedGenerating := s.IsGenerating && !m.state.IsGenerating
	m.state = s

	m.selector.SetSelected(s.SelectedTemplateID)
	m.prompt.SetDisabled(s.IsGenerating)
	m.code.Sync(s.GeneratedFiles, s.ViewMode)
	if s.LastError != nil {
		m.setStatus(s.LastError.Error(), true)
	}

	if startedGenerating {
		return m.spinner.Tick
	}
	return nil
}

func (m *PageModel) setFocus(f focusArea) tea.Cmd {
	m.focus = f
	m.selector.Blur()
	m.prompt.Blur()
	m.code.Blur()

	switch f {
	case focusTemplates:
		m.selector.Focus()
	case focusPrompt:
		return m.prompt.Focus()
	case focusOutput:
		m.code.Focus()
	}
	return nil
}

func (m *PageModel) setStatus(s string, isErr bool) {
	m.status = s
	m.statusErr = isErr
}

// generateDisabled mirrors the Generate button: no prompt, no template,
// or a generation already running.
func (m PageModel) generateDisabled() bool {
	return !m.state.CanSubmit() || m.state.IsGenerating
}

func (m PageModel) exportDir() string {
	id := m.state.SelectedTemplateID
	if id == "" {
		id = "app"
	}
	return filepath.Join(m.exportRoot, fmt.Sprintf("generated-%s-%s", id, time.Now().Format("20060102-150405")))
}

func exportCmd(s controller.State, dir string, store *history.Store) tea.Cmd {
	return func() tea.Msg {
		written, err := project.WriteDir(s.GeneratedFiles, dir)
		msg := exportedMsg{dir: dir, files: written, err: err}
		if err == nil && store != nil {
			msg.historyErr = store.Add(history.Entry{
				Template: s.SelectedTemplateID,
				Prompt:   s.Prompt,
				Path:     dir,
				Files:    written,
			})
		}
		return msg
	}
}

func (m *PageModel) layout() {
	left, right := m.columns()
	m.prompt.SetWidth(left - 4)

	codeHeight := m.height - 12
	if codeHeight < 5 {
		codeHeight = 5
	}
	m.code.SetSize(right-4, codeHeight)

	m.helpView.Width = m.width - 6
	m.helpView.Height = m.height - 8
}

func (m PageModel) columns() (left, right int) {
	w := m.width
	if w < 60 {
		w = 60
	}
	left = w / 3
	if left < 34 {
		left = 34
	}
	right = w - left - 1
	return left, right
}

func (m PageModel) View() string {
	if m.width == 0 {
		return "\n  Initializing..."
	}

	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			lipgloss.JoinVertical(lipgloss.Center,
				m.theme.Title.Render("Help"),
				m.helpView.View(),
				m.theme.SubtleText.Render("Press [Esc] or [?] to go back"),
			),
		)
	}

	left, right := m.columns()
	leftCol := lipgloss.JoinVertical(lipgloss.Left,
		m.selector.View(m.theme, left),
		m.prompt.View(m.theme, left-4, m.spinner.View()),
		m.generateButton(),
	)
	rightCol := m.code.View(m.theme, right)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		lipgloss.JoinHorizontal(lipgloss.Top, leftCol, " ", rightCol),
		m.statusLine(),
		m.footer(),
	)
}

func (m PageModel) header() string {
	mode := "☾ dark"
	if m.theme.Dark {
		mode = "☀ light"
	}
	brand := lipgloss.JoinHorizontal(lipgloss.Center,
		m.theme.Title.Render("FireCrawl"),
		m.theme.Badge.Render("Beta"),
	)
	nav := m.theme.SubtleText.Render(fmt.Sprintf("Templates · Docs · [ctrl+t] %s", mode))
	gap := m.width - lipgloss.Width(brand) - lipgloss.Width(nav)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, brand, lipgloss.NewStyle().Width(gap).Render(""), nav)
}

func (m PageModel) generateButton() string {
	label := "Generate Application →"
	if m.state.IsGenerating {
		label = m.spinner.View() + " Generating..."
	}
	if m.generateDisabled() {
		return m.theme.DisabledButton.Render(label)
	}
	return m.theme.Button.Render(label + "  [ctrl+g]")
}

func (m PageModel) statusLine() string {
	hints := "[tab] focus • [ctrl+p] code/preview • [ctrl+e] export • [?] help • [ctrl+c] quit"
	if m.status == "" {
		return m.theme.SubtleText.Render(hints)
	}
	if m.statusErr {
		return m.theme.Error.Render(m.status)
	}
	return m.theme.Success.Render(m.status)
}

func (m PageModel) footer() string {
	return m.theme.SubtleText.Render(fmt.Sprintf("© %d FireCrawl. All rights reserved.", time.Now().Year()))
}
