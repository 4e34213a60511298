package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/talent-screener/internal/config"
	"alfredoptarigan/talent-screener/internal/logger"
)

const app = "recruiter"

// Actual version can be specified in build command.
var version = "unknown"

var (
	cfg *config.Config
	log *zap.Logger

	rootCmd = &cobra.Command{
		Use:           app,
		Short:         "recruiter screens a batch of CVs against a job description with Gemini",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initRuntime()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if log != nil {
				_ = log.Sync()
			}
		},
	}
)

// Execute executes the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	cobra.CheckErr(viper.BindPFlag("LOG_DEBUG", rootCmd.PersistentFlags().Lookup("debug")))
	cobra.CheckErr(viper.BindPFlag("LOG_JSON", rootCmd.PersistentFlags().Lookup("json")))
}

// initRuntime loads configuration and builds a logger that writes to stderr,
// leaving stdout for command output.
func initRuntime() error {
	cfg = config.Load()
	cfg.Log.Debug = cfg.Log.Debug || viper.GetBool("LOG_DEBUG")
	cfg.Log.JSON = cfg.Log.JSON || viper.GetBool("LOG_JSON")

	l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug, "stderr")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log = l

	if !cfg.EnvFileLoaded {
		log.Debug("no .env file found, using environment and default values")
	}
	return nil
}
