package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/firecrawl/appgen/internal/config"
	"github.com/firecrawl/appgen/internal/controller"
	"github.com/firecrawl/appgen/internal/history"
)

// Run mounts a controller, runs the page until the user quits, then
// unmounts it. Pending generations are cancelled on exit.
func Run(cfg *config.Config, log *logrus.Logger) error {
	ctrl := controller.New(controller.FromConfig(cfg, log))
	defer ctrl.Close()

	m := NewPageModel(ctrl, PageOptions{
		Theme:     cfg.Theme,
		CodeStyle: cfg.CodeStyle,
		History:   history.NewStore(cfg.HistoryFile),
		Logger:    log,
	})
	defer m.Detach()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
