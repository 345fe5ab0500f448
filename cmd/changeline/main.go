// Copyright 2026 The Changeline Authors
// SPDX-License-Identifier: Apache-2.0

// changeline renders a change feed as a zoomable timeline: one row per
// change type, one marker per event, with a shared time axis.
//
// Two modes of operation:
//
// Interactive (default): a full-screen terminal UI. The mouse wheel
// zooms around the pointer, dragging pans, hovering a marker shows its
// tooltip, and the [+] [-] [Reset] controls zoom around the plot
// center. Keyboard equivalents are listed in the help line.
//
// Export (--svg): loads the feed once, lays it out at --width pixels,
// and writes the timeline as an SVG document.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	_ "time/tzdata"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/changeline/changeline/lib/changefeed"
	"github.com/changeline/changeline/lib/cli"
	"github.com/changeline/changeline/lib/config"
	"github.com/changeline/changeline/lib/svgcanvas"
	"github.com/changeline/changeline/lib/timeline"
	"github.com/changeline/changeline/lib/timelineui"
	"github.com/changeline/changeline/lib/version"
)

// defaultExportWidth is the SVG width when stdout is not a terminal.
const defaultExportWidth = 1280

// pixelsPerColumn converts a terminal width to a default SVG width.
const pixelsPerColumn = 10

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		var coder interface{ ExitCode() int }
		if errors.As(err, &coder) {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// options are the command-line flags. Flags that were set override
// the corresponding config values.
type options struct {
	feed        string
	configPath  string
	field       string
	svgPath     string
	width       int
	doubleClick string
	boundPan    bool
	logOutput   string
	logLevel    string
}

func newFlagSet(values *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("changeline", pflag.ContinueOnError)
	flagSet.StringVar(&values.feed, "feed", "", "feed path or URL (default: feed.source from config, else changes.json)")
	flagSet.StringVar(&values.configPath, "config", "", "path to YAML config file (default: $CHANGELINE_CONFIG)")
	flagSet.StringVar(&values.field, "field", "", "document field holding the event list (default: Changes)")
	flagSet.StringVar(&values.svgPath, "svg", "", "write the timeline as SVG to this path (- for stdout) instead of running the viewer")
	flagSet.IntVar(&values.width, "width", 0, "SVG width in pixels (default: terminal width x 10, or 1280)")
	flagSet.StringVar(&values.doubleClick, "double-click", "", "double-click behavior: zoom-at-point or center-on-event")
	flagSet.BoolVar(&values.boundPan, "bound-pan", false, "keep the event extent inside the plot while panning")
	flagSet.StringVar(&values.logOutput, "log-output", "", "write JSON log records to this file (in addition to normal display)")
	flagSet.StringVar(&values.logLevel, "log-level", "", "minimum log level: debug, info, warn, error")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

func run(args []string) error {
	var values options
	flagSet := newFlagSet(&values)

	// Handle --version before flag parsing so it works with any other
	// flags present.
	if len(args) > 0 && args[0] == "--version" {
		version.Print("changeline")
		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return cli.Validation("%w", err).WithHint("Run 'changeline --help' for usage.")
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if rest := flagSet.Args(); len(rest) > 0 {
		return cli.Validation("unexpected argument: %s", rest[0]).
			WithHint("Pass the feed with --feed <path or URL>.")
	}

	cfg, err := loadConfig(values.configPath)
	if err != nil {
		return cli.Validation("%w", err).
			WithHint("Check the file named by --config or CHANGELINE_CONFIG.")
	}
	applyFlags(flagSet, &values, cfg)
	if err := cfg.Validate(); err != nil {
		return cli.Validation("invalid configuration: %w", err)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return cli.Validation("%w", err)
	}

	if values.svgPath != "" {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return runExport(ctx, cfg, level, values)
	}
	return runViewer(cfg, level, values.logOutput)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(flagSet *pflag.FlagSet, values *options, cfg *config.Config) {
	if flagSet.Changed("feed") {
		cfg.Feed.Source = values.feed
	}
	if flagSet.Changed("field") {
		cfg.Feed.Field = values.field
	}
	if flagSet.Changed("double-click") {
		cfg.View.DoubleClick = values.doubleClick
	}
	if flagSet.Changed("bound-pan") {
		cfg.View.BoundPan = values.boundPan
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = values.logLevel
	}
}

// runViewer runs the interactive terminal UI. Log records go to the
// status bar through a TUILogHandler instead of stderr, which would
// corrupt the alt-screen display. --log-output additionally captures
// every record to a JSON file.
func runViewer(cfg *config.Config, level slog.Level, logOutput string) error {
	tuiHandler := timelineui.NewTUILogHandler(level)

	var handler slog.Handler = tuiHandler
	if logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(logOutput)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", logOutput, err)
		}
		defer closeFile()
		handler = fanoutHandler{tuiHandler, fileHandler}
	}
	logger := slog.New(handler)

	sessionConfig, err := cfg.Session(timelineui.TerminalParams(), logger)
	if err != nil {
		return cli.Validation("%w", err)
	}
	session := timeline.NewSession(sessionConfig)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := timelineui.NewModel(session, timelineui.Options{Context: ctx})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	tuiHandler.SetProgram(program)

	_, err = program.Run()
	return err
}

// runExport loads the feed once and writes the SVG document.
func runExport(ctx context.Context, cfg *config.Config, level slog.Level, values options) error {
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	if values.logOutput != "" {
		fileHandler, closeFile, err := openFileLogHandler(values.logOutput)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", values.logOutput, err)
		}
		defer closeFile()
		handler = fanoutHandler{handler, fileHandler}
	}
	logger := slog.New(handler)

	width := values.width
	if width <= 0 {
		width = exportWidth()
	}

	sessionConfig, err := cfg.Session(timeline.PixelParams(), logger)
	if err != nil {
		return cli.Validation("%w", err)
	}
	session := timeline.NewSession(sessionConfig)
	if err := session.Mount(ctx, float64(width)); err != nil {
		return categorizeLoadError(cfg.Feed.Source, err)
	}
	defer session.Unmount()

	if err := writeSVG(values.svgPath, session.Scene()); err != nil {
		return err
	}

	feed := session.Feed()
	logger.Info("wrote timeline",
		"path", values.svgPath,
		"width", width,
		"events", len(feed.Events),
		"dropped", feed.Dropped,
	)
	return nil
}

// writeSVG renders scene to path, or to stdout for "-". A failed close
// is a failed write.
func writeSVG(path string, scene *timeline.Scene) error {
	if path == "-" {
		if err := svgcanvas.Render(os.Stdout, scene); err != nil {
			return cli.Internal("writing SVG: %w", err)
		}
		return nil
	}

	file, err := os.Create(path)
	if err != nil {
		return cli.Internal("creating %s: %w", path, err)
	}
	if err := svgcanvas.Render(file, scene); err != nil {
		file.Close()
		return cli.Internal("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return cli.Internal("writing %s: %w", path, err)
	}
	return nil
}

// exportWidth is the default SVG width: ten pixels per terminal column
// when stdout is a terminal.
func exportWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if columns, _, err := term.GetSize(fd); err == nil && columns > 0 {
			return columns * pixelsPerColumn
		}
	}
	return defaultExportWidth
}

// categorizeLoadError classifies a feed load failure for the exit code.
func categorizeLoadError(source string, err error) *cli.ToolError {
	var netErr net.Error
	var statusErr *changefeed.StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound:
		return cli.NotFound("loading feed %s: %w", source, err).
			WithHint("Check the feed URL, or the base path it is joined onto (CHANGELINE_BASE_PATH).")
	case errors.As(err, &statusErr) && (statusErr.Code >= http.StatusInternalServerError || statusErr.Code == http.StatusTooManyRequests):
		return cli.Transient("loading feed %s: %w", source, err)
	case errors.As(err, &statusErr):
		return cli.Validation("loading feed %s: %w", source, err)
	case errors.Is(err, fs.ErrNotExist):
		return cli.NotFound("loading feed %s: %w", source, err).
			WithHint("Pass --feed <path or URL>, set feed.source in the config file, or set CHANGELINE_BASE_PATH for relative sources.")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled), errors.As(err, &netErr):
		return cli.Transient("loading feed %s: %w", source, err)
	default:
		return cli.Validation("loading feed %s: %w", source, err).
			WithHint("Check that the feed is a JSON, JSONC, or CBOR document with a list field named by --field.")
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `changeline: zoomable timeline of a change feed.

Loads a change feed (JSON, JSONC, or CBOR, optionally zstd or lz4
compressed, from a file or URL) and shows one row per change type with
one marker per event on a shared time axis.

Usage:
  changeline [flags]

Examples:
  # Browse the feed in the current directory
  changeline

  # Browse a remote feed
  changeline --feed https://pacs.example.org/changes

  # Export an SVG at 1600 pixels wide
  changeline --feed changes.json --svg timeline.svg --width 1600

Environment:
  CHANGELINE_CONFIG     path to a YAML config file
  CHANGELINE_BASE_PATH  base path or URL for relative feed sources

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
