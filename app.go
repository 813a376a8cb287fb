package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pinboard/internal/assets"
	"pinboard/internal/board"
	"pinboard/internal/persist"
	"pinboard/internal/viewport"
)

type App struct {
	ConfigPath string
	LogFile    string

	cfg *Config
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "pinboard [board-file]",
		Short:        "Spatial board for arranging files into categories",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		Example: strings.TrimSpace(`
  # Start with an empty board
  pinboard

  # Open a saved board
  pinboard moodboard.yaml

  # Render a board without the TUI
  pinboard export png moodboard.yaml moodboard.png
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runTUI(cmd.Context(), app, path)
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(app.ConfigPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = app.LogFile
		}
		app.cfg = cfg
		return nil
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", defaultConfigPath(), "Path to the config file")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Write logs to this file; empty disables logging (overrides log_file)")

	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newConvertCmd(app))
	cmd.AddCommand(newInspectCmd(app))
	return cmd
}

// newLogger opens the configured log file. An empty path discards logs,
// since the TUI owns stdout.
func newLogger(cfg *Config) (*slog.Logger, io.Closer, error) {
	if cfg.LogFile == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), io.NopCloser(nil), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	return logger, f, nil
}

func runTUI(ctx context.Context, app *App, path string) error {
	cfg := app.cfg

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	logger.Info("starting",
		slog.String("config", app.ConfigPath),
		slog.String("board", path),
		slog.String("log_level", cfg.LogLevel.String()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var opts []modelOption
	watcher, err := assets.NewWatcher(assets.Resolver{}, logger)
	if err != nil {
		logger.Warn("file watching disabled", slog.String("error", err.Error()))
	} else {
		opts = append(opts, withTracker(watcher))
	}
	if fm, err := assets.NewFontMeasurer(assets.DefaultFontSize); err == nil {
		opts = append(opts, withMeasurer(fm))
	} else {
		logger.Warn("font measurer unavailable", slog.String("error", err.Error()))
	}

	m := newModel(ctx, cfg, logger, opts...)
	if path != "" {
		m.open(m.cfg.GetSavePath(path))
	}

	g, gCtx := errgroup.WithContext(ctx)
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(gCtx),
	)

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gCtx, func(e assets.Event) {
				p.Send(refEventMsg(e))
			})
		})
	}
	g.Go(func() error {
		// Quitting the program stops the watcher.
		defer cancel()
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) && gCtx.Err() != nil {
			return nil
		}
		return err
	})

	if err := g.Wait(); err != nil {
		logger.Error("application error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("stopped")
	return nil
}

func loadBoard(ctx context.Context, app *App, path string) (*board.Board, *persist.File, error) {
	f, err := persist.Load(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	b, err := f.Board(board.WithDefaultColor(app.cfg.categoryColor()))
	if err != nil {
		return nil, nil, err
	}
	return b, f, nil
}

func newExportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render a board to an image or text file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "png <board-file> <out.png>",
		Short: "Render a board to PNG",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			icons := assets.NewIconProvider(assets.ForBoard(args[0]), thumbnailSize)
			if err := exportPNG(args[1], b, icons); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", absPath(args[1]))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "txt <board-file> [out.txt]",
		Short: "Render a board as text (stdout when no output file is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			icons := assets.NewIconProvider(assets.ForBoard(args[0]), thumbnailSize)
			text, err := fitBoardText(b, app.cfg.CellWidth, app.cfg.CellHeight, icons)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
				return err
			}
			return writeText(args[1], text)
		},
	})
	return cmd
}

func newConvertCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a board between YAML and SQLite",
		Long:  "Convert a board between formats. The format is chosen by extension: .db, .sqlite and .sqlite3 are SQLite, anything else is YAML.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, f, err := loadBoard(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			v := viewport.New()
			f.ApplyView(v)
			if err := persist.Save(cmd.Context(), args[1], persist.Snapshot(b, v)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d categories, %d objects)\n",
				absPath(args[1]), len(b.Categories()), len(b.Objects()))
			return nil
		},
	}
}

func newInspectCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <board-file>",
		Short: "List categories and the objects inside them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := loadBoard(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			writeInventory(cmd.OutOrStdout(), b, assets.ForBoard(args[0]))
			return nil
		},
	}
}

// writeInventory prints every category with its members, then the objects
// outside any category.
func writeInventory(w io.Writer, b *board.Board, r assets.Resolver) {
	for _, c := range b.Categories() {
		members := b.Members(c.ID())
		fmt.Fprintf(w, "[%d] %s (%s, %d item(s))\n", c.ID(), c.Title(), c.Color().Hex(), len(members))
		for _, o := range members {
			fmt.Fprintf(w, "    %s%s\n", o.Title(), missingSuffix(r, o.Ref()))
		}
	}
	var loose []*board.ObjectNode
	for _, o := range b.Objects() {
		if _, ok := o.CategoryID(); !ok {
			loose = append(loose, o)
		}
	}
	if len(loose) == 0 {
		return
	}
	fmt.Fprintf(w, "Uncategorized (%d item(s))\n", len(loose))
	for _, o := range loose {
		fmt.Fprintf(w, "    %s%s\n", o.Title(), missingSuffix(r, o.Ref()))
	}
}

func missingSuffix(r assets.Resolver, ref board.ExternalRef) string {
	if r.Exists(ref) {
		return ""
	}
	return " (missing: " + string(ref) + ")"
}
