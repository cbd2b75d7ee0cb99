// mtm is a terminal client for the multi-tenant project manager. All
// state lives on the remote GraphQL server; the client holds nothing
// but the in-memory session and in-progress form drafts.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/ostrander/mtm/internal/api"
	"github.com/ostrander/mtm/internal/config"
	"github.com/ostrander/mtm/internal/ui"
)

// Version information set via ldflags
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var serverURL string
	var logOutput string
	var showVersion bool

	flagSet := pflag.NewFlagSet("mtm", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to config file (default: user config dir)")
	flagSet.StringVar(&serverURL, "server", "", "GraphQL endpoint URL (overrides config)")
	flagSet.StringVar(&logOutput, "log-output", "", "write JSON log records to this file")
	flagSet.BoolVarP(&showVersion, "version", "v", false, "print version and exit")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		fmt.Printf("mtm %s (commit: %s, built: %s)\n", version, commit, date)
		return nil
	}

	if configPath == "" {
		defaultPath, err := config.DefaultPath()
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
		configPath = defaultPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if logOutput == "" {
		logOutput = cfg.LogFile
	}

	logger, closeLog, err := newLogger(logOutput)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := api.NewClient(api.Config{
		ServerURL: cfg.ServerURL,
		HTTPClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	app := ui.NewApp(client)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running application: %w", err)
	}
	return nil
}

// newLogger writes JSON records to the given file. The terminal is
// owned by the TUI, so without a file the logs are discarded.
func newLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.NewJSONHandler(io.Discard, nil)), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}
