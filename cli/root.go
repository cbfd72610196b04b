package cli

import (
	"context"

	"github.com/gear6io/floe/config"
	"github.com/gear6io/floe/harness"
	"github.com/gear6io/floe/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "floe",
	Short: "Validation harness for Iceberg row-level operations",
	Long: `Floe drives a matrix of catalog, file format and write distribution
permutations against real Iceberg tables: it creates and configures tables,
appends rows, and asserts the snapshot summaries the operations leave behind.

Results are recorded in a local run ledger.`,
	Version: "0.1.0",
}

type rootOptions struct {
	configPath string
	seed       int64
}

var rootOpts = &rootOptions{}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteWithContext runs the root command with a context carrying the logger
func ExecuteWithContext(ctx context.Context) error {
	rootCmd.SetContext(ctx)

	logger := loggerFromContext(ctx)
	logger.Info().Str("cmd", "root").Msg("executing root command")

	return rootCmd.Execute()
}

type contextKey string

const loggerKey contextKey = "logger"

// WithLogger stores the logger on the context for subcommands
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// loggerFromContext retrieves the logger from the context, a no-op logger
// when none was stored
func loggerFromContext(ctx context.Context) zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return logger
	}
	return zerolog.Nop()
}

// loadConfig resolves the configuration: the file behind --config when given,
// built-in defaults otherwise
func loadConfig() (*config.Config, error) {
	if rootOpts.configPath == "" {
		return config.LoadDefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(rootOpts.configPath)
	if err != nil {
		return nil, errors.New(ErrConfigLoadFailed, "failed to load configuration", err).
			AddContext("path", rootOpts.configPath)
	}
	return cfg, nil
}

// applySeed fixes the matrix draw source: the --seed flag wins, then a
// non-zero seed from the configuration. Returns the applied seed and whether
// one was applied.
func applySeed(cmd *cobra.Command, cfg *config.Config) (int64, bool) {
	if cmd.Root().PersistentFlags().Changed("seed") {
		harness.SetSeed(rootOpts.seed)
		return rootOpts.seed, true
	}
	if cfg.Matrix.Seed != 0 {
		harness.SetSeed(cfg.Matrix.Seed)
		return cfg.Matrix.Seed, true
	}
	return 0, false
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootOpts.configPath, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().Int64Var(&rootOpts.seed, "seed", 0, "seed for the matrix vectorization draw")
}
