package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/gear6io/floe/cli"
	"github.com/gear6io/floe/config"
	"github.com/rs/zerolog"
)

func main() {
	cfg := loadBootstrapConfig()

	logger, err := config.SetupLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	ctx := cli.WithLogger(context.Background(), logger)

	logger.Info().Str("cmd", "main").Msg("starting floe")

	if err := cli.ExecuteWithContext(ctx); err != nil {
		logger.Error().Str("cmd", "main").Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadBootstrapConfig resolves the configuration used for logger setup. A
// --config file that fails to load falls back to defaults here; the command
// itself reloads it and surfaces the error.
func loadBootstrapConfig() *config.Config {
	path := configPathFromArgs(os.Args[1:])
	if path == "" {
		return config.LoadDefaultConfig()
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return config.LoadDefaultConfig()
	}
	return cfg
}

// configPathFromArgs scans the raw arguments for --config without running
// the full flag parser, which happens later inside the CLI.
func configPathFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	return ""
}
