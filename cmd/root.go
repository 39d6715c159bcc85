// Package cmd implements the CLI command structure for tracker.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tracker-go/internal/app"
	"github.com/nibzard/tracker-go/internal/config"
	"github.com/nibzard/tracker-go/internal/logging"
	"github.com/nibzard/tracker-go/internal/progress"
	"github.com/nibzard/tracker-go/internal/ui"
	"github.com/nibzard/tracker-go/internal/web"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the tracker CLI.
func Run(ctx context.Context, args []string) error {
	return run(ctx, args, os.Stdout, os.Stderr)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("tracker", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	loaded, err := config.LoadWithSources(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := loaded.Config
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand(stdout)
	}

	// No args or a leading flag means "tui".
	subcommand := "tui"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "serve":
		return serveCommand(ctx, cfg, remainingArgs, stderr)
	case "show":
		return showCommand(cfg, remainingArgs, stdout, stderr)
	case "toggle":
		return toggleCommand(cfg, remainingArgs, stdout, stderr)
	case "reset":
		return resetCommand(cfg, remainingArgs, stdout, stderr)
	case "validate":
		return validateCommand(cfg, remainingArgs, stdout)
	case "config":
		return configCommand(loaded, remainingArgs, stdout)
	case "version":
		return versionCommand(stdout)
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// newLogger builds the logger for a command. Output goes to the configured
// log file when set, otherwise to fallback.
func newLogger(cfg *config.Config, fallback io.Writer) (*log.Logger, func(), error) {
	opts := logging.OptionsFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
	if cfg.LogFile == "" {
		return logging.New(fallback, opts), func() {}, nil
	}
	f, err := logging.OpenFile(cfg.LogFile)
	if err != nil {
		return nil, nil, err
	}
	return logging.New(f, opts), func() { _ = f.Close() }, nil
}

// openSession loads the progress file with a logger writing to fallback.
func openSession(cfg *config.Config, fallback io.Writer) (*app.Session, func(), error) {
	logger, closeLog, err := newLogger(cfg, fallback)
	if err != nil {
		return nil, nil, err
	}
	return app.Open(cfg, logger), closeLog, nil
}

// tuiCommand launches the TUI.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("tracker tui", flag.ContinueOnError)
	noMouse := fs.Bool("no-mouse", false, "Disable mouse support")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	// The TUI owns the terminal; logs go to the log file or nowhere.
	session, closeLog, err := openSession(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer closeLog()

	return ui.RunTUI(ctx, session, ui.WithMouse(!*noMouse))
}

// serveCommand runs the web front end until ctx is cancelled.
func serveCommand(ctx context.Context, cfg *config.Config, args []string, stderr io.Writer) error {
	fs := flag.NewFlagSet("tracker serve", flag.ContinueOnError)
	addr := fs.String("addr", cfg.Addr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	logger, closeLog, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	session := app.Open(cfg, logger)
	return web.New(session, logger).ListenAndServe(ctx, *addr)
}

// showCommand prints every task block without starting the TUI.
func showCommand(cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	session, closeLog, err := openSession(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	if n := session.StartupNotice(); !n.IsZero() {
		fmt.Fprintf(stdout, "%s\n\n", n.Text)
	}
	return ui.Render(stdout, session.Tasks(), session.Overall())
}

// toggleCommand flips one unit and saves.
func toggleCommand(cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: tracker toggle <task> <unit>")
	}
	unit, err := strconv.Atoi(args[1])
	if err != nil || unit < 1 {
		return fmt.Errorf("invalid unit number %q: units are numbered from 1", args[1])
	}

	session, closeLog, err := openSession(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	if n := session.StartupNotice(); !n.IsZero() {
		fmt.Fprintln(stdout, n.Text)
	}

	idx, err := findTask(session, args[0])
	if err != nil {
		return err
	}
	if err := session.ToggleAt(idx, unit-1); err != nil {
		return fmt.Errorf("toggle: %w", err)
	}
	notice := session.Save()
	if notice.Kind == app.NoticeError {
		return errors.New(notice.Text)
	}

	task := session.Tasks()[idx]
	state := "not done"
	if task.Flags[unit-1] {
		state = "done"
	}
	fmt.Fprintf(stdout, "%s unit %d: %s (%s)\n", task.Definition.Name, unit, state, task.Summary())
	fmt.Fprintln(stdout, notice.Text)
	return nil
}

// findTask resolves a task by exact name, case-insensitive name, or
// 1-based position.
func findTask(session *app.Session, arg string) (int, error) {
	tasks := session.Tasks()
	for _, t := range tasks {
		if t.Definition.Name == arg {
			return t.Index, nil
		}
	}
	for _, t := range tasks {
		if strings.EqualFold(t.Definition.Name, arg) {
			return t.Index, nil
		}
	}
	if n, err := strconv.Atoi(arg); err == nil && n >= 1 && n <= len(tasks) {
		return n - 1, nil
	}
	return 0, fmt.Errorf("unknown task: %q", arg)
}

// resetCommand clears all progress and deletes the progress file.
func resetCommand(cfg *config.Config, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments: %v", args)
	}
	session, closeLog, err := openSession(cfg, stderr)
	if err != nil {
		return err
	}
	defer closeLog()

	notice := session.Reset()
	if notice.Kind == app.NoticeError {
		return errors.New(notice.Text)
	}
	fmt.Fprintln(stdout, notice.Text)
	return nil
}

// validateCommand checks a progress file against the schema.
func validateCommand(cfg *config.Config, args []string, stdout io.Writer) error {
	if len(args) > 1 {
		return fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	path := cfg.ProgressFile
	if len(args) == 1 {
		path = args[0]
	}

	schema, err := progress.LoadSchema(cfg.SchemaFile)
	if err != nil {
		return fmt.Errorf("loading schema: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintf(stdout, "No progress file at %s (nothing saved yet)\n", path)
			return nil
		}
		return fmt.Errorf("read progress file: %w", err)
	}

	result := schema.Check(data)
	if result.Valid {
		fmt.Fprintf(stdout, "%s: valid\n", path)
		return nil
	}
	fmt.Fprintf(stdout, "%s: invalid\n", path)
	for _, e := range result.Errors {
		fmt.Fprintf(stdout, "  - %v\n", e)
	}
	return fmt.Errorf("validation failed: %d error(s)", len(result.Errors))
}

// configCommand prints an example config, or the effective one with -show.
func configCommand(loaded *config.ConfigWithSources, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("tracker config", flag.ContinueOnError)
	show := fs.Bool("show", false, "Show the effective configuration and where each value came from")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*show {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	cfg := loaded.Config
	values := map[string]string{
		"progress_file":  cfg.ProgressFile,
		"schema_file":    cfg.SchemaFile,
		"addr":           cfg.Addr,
		"log_level":      cfg.LogLevel,
		"log_format":     cfg.LogFormat,
		"log_timestamps": strconv.FormatBool(cfg.LogTimestamps),
		"log_caller":     strconv.FormatBool(cfg.LogCaller),
		"log_file":       cfg.LogFile,
		"tasks":          fmt.Sprintf("%d defined", len(cfg.Tasks)),
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, f := range loaded.Files {
		fmt.Fprintf(stdout, "# loaded %s\n", f)
	}
	for _, k := range keys {
		fmt.Fprintf(stdout, "%-15s = %-30q # %s\n", k, values[k], loaded.Sources[k])
	}
	return nil
}

// versionCommand prints version information.
func versionCommand(w io.Writer) error {
	fmt.Fprintf(w, "tracker version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Tracker - Track your progress. Save your wins. Reset if needed.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  tracker [options] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  tui                   Launch the terminal UI (default command)")
	fmt.Fprintln(w, "  serve [-addr addr]    Serve the tracker page over HTTP")
	fmt.Fprintln(w, "  show                  Print every task and its progress")
	fmt.Fprintln(w, "  toggle <task> <unit>  Toggle one unit (numbered from 1) and save")
	fmt.Fprintln(w, "  reset                 Clear all progress and delete the progress file")
	fmt.Fprintln(w, "  validate [file]       Validate a progress file against the schema")
	fmt.Fprintln(w, "  config [-show]        Print an example config, or the effective one")
	fmt.Fprintln(w, "  version               Show version information")
	fmt.Fprintln(w, "  help                  Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "TUI Options (use with 'tui' command):")
	fmt.Fprintln(w, "  -no-mouse")
	fmt.Fprintln(w, "        Disable mouse support")
}
