// ABOUTME: Root command for the kabar CLI
// ABOUTME: Handles global flags and launches the TUI when no subcommand is given

package cmd

import (
	"context"
	"strings"

	"github.com/kabar-app/kabar/internal/config"
	"github.com/sethvargo/go-envconfig"
	"github.com/spf13/cobra"
)

var (
	apiURL     string
	configDir  string
	jsonOutput bool
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "kabar",
	Short: "News and daily motivation in your terminal",
	Long: `kabar is a terminal client for the Kabar news and motivation platform.

Run it without arguments for the interactive interface, or use the
subcommands from scripts.

Environment Variables:
  KABAR_API_URL           Backend API URL (default: http://localhost:3000)
  KABAR_CONFIG_DIR        Where the session and logs are kept (default: ~/.config/kabar)
  KABAR_PASSWORD          Password for login and register when --password is omitted
  SUPABASE_URL            Object storage URL for news images (optional)
  SUPABASE_ANON_KEY       Object storage key for news images (optional)
  LOG_LEVEL, LOG_FORMAT   Logging (debug|info|warn|error, text|json)`,
	Args: cobra.NoArgs,
	Run:  runTUICommand,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides KABAR_API_URL)")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Directory for session and logs (overrides KABAR_CONFIG_DIR)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// loadConfig reads .env and the environment, then applies global flags
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	return applyFlags(cfg), nil
}

// loadConfigFrom is loadConfig over an explicit lookuper
func loadConfigFrom(ctx context.Context, l envconfig.Lookuper) (*config.Config, error) {
	cfg, err := config.LoadFrom(ctx, l)
	if err != nil {
		return nil, err
	}
	return applyFlags(cfg), nil
}

func applyFlags(cfg *config.Config) *config.Config {
	if apiURL != "" {
		cfg.APIURL = strings.TrimRight(apiURL, "/")
	}
	if configDir != "" {
		cfg.ConfigDir = configDir
	}
	return cfg
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput
}
