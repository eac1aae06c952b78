// Package cmd contains all CLI commands for articlehub
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/SergeyParamoshkin/articlehub/internal/config"
)

const ServiceName = "articlehub"

var (
	cfgFile string
	verbose bool
	cfg     *config.Config
	logger  *zap.SugaredLogger
	version = "dev"
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "articlehub",
	Short: "Terminal client for the article sharing platform",
	Long: `articlehub is a terminal client for the article sharing platform.

Sign in, read and react to your feed, write your own articles and manage
your profile from an interactive shell.

Example usage:
  articlehub shell                      # Start the interactive client
  articlehub mockapi                    # Serve an in-memory API on :3333
  articlehub mockapi --routes           # Print the API route docs
  articlehub version                    # Print version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()

	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI
func SetVersion(ver string) {
	version = ver
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .articlehub.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("color", "", "color output: auto, always, or never")
	rootCmd.PersistentFlags().String("api", "", "API base URL")

	_ = v.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("api"))
	_ = v.BindPFlag("output.color", rootCmd.PersistentFlags().Lookup("color"))
}

func initConfig() error {
	var err error

	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err = newLogger(cfg.Logging.Level, verbose)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	logger.Debugw("configuration loaded",
		"api", cfg.API.BaseURL,
		"page_size", cfg.Feed.PageSize,
		"diag_addr", cfg.Diag.Addr,
	)

	return nil
}

func newLogger(level string, verbose bool) (*zap.SugaredLogger, error) {
	if verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}

		return l.Sugar(), nil
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)

	l, err := zc.Build()
	if err != nil {
		return nil, err
	}

	return l.Sugar(), nil
}
