package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/csheth/reportdesk/internal/backend"
	"github.com/csheth/reportdesk/internal/chat"
	"github.com/csheth/reportdesk/internal/config"
	"github.com/csheth/reportdesk/internal/logging"
	"github.com/csheth/reportdesk/internal/tui"
	"github.com/csheth/reportdesk/internal/workspace"
)

const staleDiscardTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (default ~/.config/reportdesk/config.yaml)")
	endpoint := flag.String("endpoint", "", "report backend URL (default http://localhost:5000/)")
	mode := flag.String("mode", "", "initial mode: general_report or book_report")
	timeout := flag.Duration("timeout", 0, "request timeout (default 60s)")
	exportDir := flag.String("export-dir", "", "directory downloads are written to")
	logFile := flag.String("log-file", "", "log file path")
	stateFile := flag.String("state-file", "", "workspace state file path")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(config.Options{File: *configPath})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "endpoint":
			cfg.Endpoint = *endpoint
		case "mode":
			cfg.Mode = *mode
		case "timeout":
			cfg.Timeout = *timeout
		case "export-dir":
			cfg.ExportDir = *exportDir
		case "log-file":
			cfg.LogFile = *logFile
		case "state-file":
			cfg.StateFile = *stateFile
		case "debug":
			cfg.Debug = *debug
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "invalid config:", err)
		os.Exit(1)
	}

	logPath := cfg.LogFile
	if logPath == "" {
		logPath = logging.DefaultPath()
	}
	fileLogger, err := logging.NewFileLogger(logPath, cfg.Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging disabled:", err)
	}
	defer func() { _ = fileLogger.Close() }()
	logger := fileLogger.Logger

	exportPath, err := filepath.Abs(cfg.ExportDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to resolve export dir:", err)
		os.Exit(1)
	}

	client, err := backend.New(backend.Config{
		Endpoint:    cfg.Endpoint,
		DiscardPath: cfg.DiscardPath,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid backend:", err)
		os.Exit(1)
	}

	logger.Info("starting",
		zap.String("endpoint", client.Endpoint()),
		zap.String("mode", cfg.Mode),
		zap.Duration("timeout", cfg.Timeout),
		zap.String("export_dir", exportPath),
		zap.String("state_file", cfg.StateFile),
		zap.String("log_file", fileLogger.Path))

	opened, err := workspace.Open(cfg.StateFile)
	if err != nil {
		logger.Warn("workspace state unavailable", zap.String("path", cfg.StateFile), zap.Error(err))
	}
	if opened.Stale != "" {
		go discardStale(client, opened.Stale, logger)
	}

	controller := chat.New(chat.Config{
		Mode:     cfg.InitialMode(),
		Identity: opened.Identity,
		Logger:   logger,
		Timeout:  cfg.Timeout,
	})

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Controller: controller,
			Backend:    client,
			Logger:     logger,
			ExportDir:  exportPath,
			StatePath:  cfg.StateFile,
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		logger.Error("program error", zap.Error(err))
		fmt.Fprintln(os.Stderr, "program error:", err)
		_ = fileLogger.Close()
		os.Exit(1)
	}
}

// discardStale asks the backend to drop the workspace left by the previous
// run. Failures are logged only.
func discardStale(client backend.Client, workspaceID string, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), staleDiscardTimeout)
	defer cancel()
	if err := client.Discard(ctx, workspaceID); err != nil {
		logger.Warn("stale workspace not discarded", zap.String("workspace", workspaceID), zap.Error(err))
		return
	}
	logger.Info("stale workspace discarded", zap.String("workspace", workspaceID))
}
