package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"github.com/firecrawl/appgen/internal/catalog"
	"github.com/firecrawl/appgen/internal/config"
	"github.com/firecrawl/appgen/internal/controller"
	"github.com/firecrawl/appgen/internal/history"
	"github.com/firecrawl/appgen/internal/project"
	"github.com/firecrawl/appgen/internal/viewer"
	"github.com/firecrawl/appgen/internal/web"
	"github.com/firecrawl/appgen/pkg/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generator page to a browser",
	Long: `Starts the web version of the generator. Each browser tab gets its own
session; closing the tab discards it. Edits to the config file are picked up
without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("host") {
			cfg.ServerHost, _ = flags.GetString("host")
		}
		if flags.Changed("port") {
			cfg.ServerPort, _ = flags.GetInt("port")
		}
		if flags.Changed("theme") {
			cfg.Theme, _ = flags.GetString("theme")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log := stderrLogger(cfg)
		srv, err := web.NewServer(cfg, log)
		if err != nil {
			return err
		}

		// Only the home config is watched; --config is a one-shot file.
		if configPath == "" {
			config.Watch(srv.Apply, func(err error) {
				log.WithError(err).Warn("Ignoring config change")
			})
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if open, _ := cmd.Flags().GetBool("open"); open {
			url := "http://" + cfg.Addr()
			if err := utils.OpenBrowser(url); err != nil {
				log.WithError(err).Warn("Could not open browser")
			}
		}
		return srv.ListenAndServe(ctx)
	},
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the available project templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		search, _ := cmd.Flags().GetString("search")

		templates := catalog.All()
		if search != "" {
			templates = catalog.Search(search)
		}
		return writeTemplates(cmd.OutOrStdout(), templates, format)
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run one generation without the interactive page",
	Example: `  appgen generate --template nextjs --prompt "a recipe box"
  appgen generate -t express -p "todo API" --out ./todo-api`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var opts generateOptions
		opts.Template, _ = cmd.Flags().GetString("template")
		opts.Prompt, _ = cmd.Flags().GetString("prompt")
		opts.Out, _ = cmd.Flags().GetString("out")
		opts.Preview, _ = cmd.Flags().GetBool("preview")
		opts.Color = colorOutput(cmd.OutOrStdout())
		opts.History = history.NewStore(cfg.HistoryFile)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runGenerate(ctx, cfg, stderrLogger(cfg), opts, cmd.OutOrStdout())
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List exported projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store := history.NewStore(cfg.HistoryFile)
		w := cmd.OutOrStdout()

		if days, _ := cmd.Flags().GetInt("prune"); days > 0 {
			removed, err := store.DeleteOld(days)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "Removed %d entries older than %d days\n", removed, days)
		}
		if cmd.Flags().Changed("delete") {
			index, _ := cmd.Flags().GetInt("delete")
			if err := store.DeleteOne(index); err != nil {
				return err
			}
		}

		entries, err := store.Load()
		if err != nil {
			return err
		}
		return writeHistory(w, entries)
	},
}

func init() {
	historyCmd.Flags().Int("prune", 0, "remove entries older than this many days")
	historyCmd.Flags().Int("delete", 0, "remove the entry at this index")

	serveCmd.Flags().String("host", "", "listen host (default from config)")
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
	serveCmd.Flags().String("theme", "", "default page theme: light or dark")
	serveCmd.Flags().Bool("open", false, "open the page in the default browser")

	templatesCmd.Flags().StringP("format", "f", "table", "output format: table, json or yaml")
	templatesCmd.Flags().StringP("search", "s", "", "fuzzy filter on name, id and tags")

	generateCmd.Flags().StringP("template", "t", "", "template id (see 'appgen templates')")
	generateCmd.Flags().StringP("prompt", "p", "", "description of the application")
	generateCmd.Flags().StringP("out", "o", "", "write the generated files to this directory")
	generateCmd.Flags().Bool("preview", false, "print the preview excerpt instead of the full files")
	generateCmd.MarkFlagRequired("template")
	generateCmd.MarkFlagRequired("prompt")
}

var errUnknownFormat = errors.New("unknown format")

func writeTemplates(w io.Writer, templates []catalog.Template, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	case "yaml":
		out, err := yaml.Marshal(templates)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "table", "":
		if len(templates) == 0 {
			_, err := fmt.Fprintln(w, "No templates match.")
			return err
		}
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("ID", "NAME", "DESCRIPTION", "TAGS")
		for _, tpl := range templates {
			t.Row(tpl.ID, tpl.Name, tpl.Description, strings.Join(tpl.Tags, ", "))
		}
		_, err := fmt.Fprintln(w, t.Render())
		return err
	default:
		return fmt.Errorf("%w %q (want table, json or yaml)", errUnknownFormat, format)
	}
}

type generateOptions struct {
	Template string
	Prompt   string
	Out      string
	Preview  bool
	Color    bool
	History  *history.Store // records --out exports when set
}

// runGenerate mounts a controller, drives one submit to completion and
// prints the result.
func runGenerate(ctx context.Context, cfg *config.Config, log *logrus.Logger, opts generateOptions, w io.Writer) error {
	if strings.TrimSpace(opts.Prompt) == "" {
		return errors.New("prompt must not be empty")
	}

	ctrl := controller.New(controller.FromConfig(cfg, log))
	defer ctrl.Close()

	if err := ctrl.SelectTemplate(opts.Template); err != nil {
		return err
	}
	if err := ctrl.SetPrompt(opts.Prompt); err != nil {
		return err
	}
	if !ctrl.Submit() {
		return errors.New("generation was not started")
	}
	if err := ctrl.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for generation: %w", err)
	}

	state := ctrl.Snapshot()
	if state.LastError != nil {
		return state.LastError
	}

	v, err := viewer.New(state.GeneratedFiles, viewer.Code)
	if err != nil {
		return err
	}
	for _, tab := range v.Tabs() {
		if err := v.Activate(tab.Name); err != nil {
			return err
		}
		fmt.Fprintf(w, "── %s (%s) ──\n", tab.Name, tab.Language)

		body := v.Content()
		if opts.Preview {
			body = v.Preview()
		} else if opts.Color {
			// On failure the plain content comes back, which is good enough.
			body, _ = viewer.HighlightTerminal(tab.Name, body, cfg.CodeStyle)
		}
		fmt.Fprintln(w, body)
		fmt.Fprintln(w)
	}

	if opts.Out != "" {
		written, err := project.WriteDir(state.GeneratedFiles, opts.Out)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		utils.PrintSuccess(fmt.Sprintf("Wrote %s to %s", strings.Join(written, ", "), opts.Out))
		if opts.History != nil {
			err := opts.History.Add(history.Entry{
				Template: state.SelectedTemplateID,
				Prompt:   state.Prompt,
				Path:     opts.Out,
				Files:    written,
			})
			if err != nil {
				log.WithError(err).Warn("Could not record export")
			}
		}
	}
	return nil
}

func writeHistory(w io.Writer, entries []history.Entry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No exports yet.")
		return err
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("#", "WHEN", "TEMPLATE", "PROMPT", "PATH")
	for i, e := range entries {
		t.Row(fmt.Sprint(i), e.CreatedAt.Format("2006-01-02 15:04"), e.Template, truncate(e.Prompt, 40), e.Path)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
