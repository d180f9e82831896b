package cli

import (
	"fmt"
	"os"

	"github.com/mvp-joe/archdiag/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool
	logger  = zap.NewNop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "archdiag",
	Short: "archdiag - architecture diagram tooling",
	Long: `archdiag helps turn architecture documentation into rendered diagrams.

It extracts ASCII-art diagrams from markdown into a conversion report,
generates Azure architecture pattern scripts for the Python diagrams library,
builds process, swimlane, ERD, matrix, Gantt, timeline and wireframe diagrams,
and checks that the external renderers are installed.

Configuration is read from ~/.archdiag/config.yml and .archdiag/config.yml,
with ARCHDIAG_* environment variables taking precedence.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// newLogger builds the stderr logger: warnings only, everything with verbose.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	return cfg.Build()
}

// loadConfig loads the configuration for the current directory.
func loadConfig() (*config.Config, string, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg, err := config.LoadConfigFromDir(root)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Debug("configuration loaded", zap.String("root", root))
	return cfg, root, nil
}
