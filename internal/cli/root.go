// Package cli provides the command-line interface for multichat.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"multichat/backend/internal/app"
	"multichat/backend/internal/config"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configDir string
	verbose   bool

	application *app.App
	closeLog    func() error
)

var rootCmd = &cobra.Command{
	Use:   "multichat",
	Short: "Ask several LLM backends the same question",
	Long: `Multichat sends every question to all enabled backends at once and keeps
their answers side by side in one saved conversation.

Backends are an OpenAI-compatible remote server ("ollama") and a model run
by the local runtime ("on_device").`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var paths []string
		if configDir != "" {
			paths = append(paths, configDir)
		}
		cfg, err := config.LoadConfig(paths...)
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		if verbose {
			cfg.LogLevel = "DEBUG"
		}

		logger, cleanup := config.SetupLogger(cfg.LogLevel, cfg.LogFile)
		slog.SetDefault(logger)
		closeLog = cleanup
		app.LogConfigSource(logger, cfg)

		application, err = app.NewApp(cfg, logger)
		if err != nil {
			return err
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer shutdown()
	return rootCmd.Execute()
}

// shutdown closes whatever PersistentPreRunE opened, also after a failed command.
func shutdown() {
	if application != nil {
		if err := application.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		application = nil
	}
	if closeLog != nil {
		_ = closeLog()
		closeLog = nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "directory holding the .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatsCmd)
	rootCmd.AddCommand(exportCmd)
}
