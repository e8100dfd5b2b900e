package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/tinytelemetry/prci/internal/logger"
	"github.com/tinytelemetry/prci/internal/model"
	"github.com/tinytelemetry/prci/internal/stubserver"
)

// Build variables - set by ldflags during build.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)

func main() {
	var configPath string
	var fixturesPath string
	var addr string
	var showVersion bool

	flag.StringVar(&configPath, "config", "", "config file (default is $HOME/.config/prci/stub.yml)")
	flag.StringVar(&fixturesPath, "fixtures", "", "fixture file with the PRs and jobs to serve")
	flag.StringVar(&addr, "addr", "", "listen address (default "+defaultAddr+")")
	flag.BoolVar(&showVersion, "version", false, "print version information")
	flag.Parse()

	if showVersion {
		fmt.Printf("prci-stub - PR CI Dashboard stub backend\n")
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildTime)
		fmt.Printf("  Go version: %s\n", goVersion)
		return
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if fixturesPath != "" {
		cfg.Fixtures = fixturesPath
	}
	if addr != "" {
		cfg.Addr = addr
	}

	if err := runServer(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer(cfg stubConfig) error {
	if err := logger.Init(logger.Config{Level: cfg.LogLevel, JSON: cfg.LogJSON}); err != nil {
		return err
	}
	defer logger.Sync()

	fixtures, err := loadFixtures(cfg)
	if err != nil {
		return err
	}

	server := stubserver.NewServer(cfg.Addr, fixtures)
	if err := server.Start(); err != nil {
		return fmt.Errorf("failed to start stub backend: %w", err)
	}

	logger.Info("stub backend listening",
		zap.String("addr", server.Addr()),
		zap.Int("prs", len(fixtures.PRs)),
		zap.Bool("authenticated", fixtures.Authenticated))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	<-sigCh

	logger.Info("shutting down", zap.Int("comments", len(server.Comments())))
	return server.Stop()
}

// loadFixtures reads the configured fixture file, or serves an empty,
// authenticated backend when none is set.
func loadFixtures(cfg stubConfig) (*stubserver.Fixtures, error) {
	fixtures := &stubserver.Fixtures{Authenticated: true}
	if cfg.Fixtures != "" {
		f, err := stubserver.LoadFixtures(cfg.Fixtures)
		if err != nil {
			return nil, err
		}
		fixtures = f
	}
	if cfg.DefaultQuery != "" {
		fixtures.DefaultQuery = cfg.DefaultQuery
	}
	if fixtures.DefaultQuery == "" {
		fixtures.DefaultQuery = model.DefaultQuery
	}
	return fixtures, nil
}
