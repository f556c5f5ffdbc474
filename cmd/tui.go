// ABOUTME: Launches the interactive terminal interface
// ABOUTME: Logs go to debug.log in the config directory while the TUI owns the screen

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kabar-app/kabar/internal/logger"
	"github.com/kabar-app/kabar/internal/tui"
	"github.com/kabar-app/kabar/internal/tui/recentfiles"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive interface",
	Args:  cobra.NoArgs,
	Run:   runTUICommand,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUICommand(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	if err := runTUI(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitError)
	}
}

func runTUI(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	logFile, err := logger.OpenFile(cfg.ConfigDir)
	if err != nil {
		return fmt.Errorf("failed to open debug log: %w", err)
	}
	defer logFile.Close()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: logFile})
	log.Info("Starting TUI", "api_url", cfg.APIURL, "uploads", cfg.Storage.Configured())

	svc := newServices(cfg, log)
	svc.session.Init(ctx)

	recent := recentfiles.New(cfg.ConfigDir)
	if _, err := recent.Load(); err != nil {
		log.Warn("Failed to load recent images", "error", err)
	}

	return tui.Run(ctx, tui.Deps{
		Client:   svc.client,
		Session:  svc.session,
		Cache:    svc.cache,
		Uploader: svc.uploader,
		Recent:   recent,
		Config:   cfg,
		Logger:   log,
	})
}
