package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tinytelemetry/prci/internal/apiclient"
	"github.com/tinytelemetry/prci/internal/logger"
	"github.com/tinytelemetry/prci/internal/retest"
	"github.com/tinytelemetry/prci/internal/tui"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var backendURL string
	var query string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/prci/config.yml)")
	flag.StringVar(&backendURL, "backend", "", "override backend URL")
	flag.StringVar(&query, "query", "", "initial search query (default is the backend's default query)")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("prci - PR CI Dashboard\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadCLIConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if query != "" {
		cfg.Query = query
	}

	if err := runTUI(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cfg cliConfig) error {
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, File: cfg.LogFile}); err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("starting dashboard",
		zap.String("version", version),
		zap.String("backend", cfg.BackendURL),
		zap.Duration("poll_interval", cfg.PollInterval),
		zap.Duration("poll_timeout", cfg.PollTimeout))

	client := apiclient.New(cfg.BackendURL, &http.Client{})
	tracker := retest.NewTracker(retest.Config{
		Interval: cfg.PollInterval,
		Timeout:  cfg.PollTimeout,
	})

	dashboard := tui.NewDashboardModel(tui.Options{
		Backend:            client,
		Tracker:            tracker,
		Query:              cfg.Query,
		PerPage:            cfg.PerPage,
		ToastDuration:      cfg.ToastDuration,
		RequestTimeout:     cfg.RequestTimeout,
		ReverseScrollWheel: cfg.ReverseScrollWheel,
	})
	app := tui.NewApp(tui.NewDashboardPage(dashboard), tui.NewHelpPage(cfg.ReverseScrollWheel))

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		if strings.Contains(err.Error(), "TTY") || strings.Contains(err.Error(), "/dev/tty") {
			return fmt.Errorf("TUI requires a real terminal")
		}
		return fmt.Errorf("error running TUI: %w", err)
	}

	logger.Info("dashboard exited", zap.Int("retests_in_flight", tracker.Len()))
	return nil
}
