package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"

	"completions-bridge/internal/config"
	"completions-bridge/internal/observability"
	"completions-bridge/internal/tokensource"
)

// apiKeyEnvVar overrides the keyring-stored credential when set.
const apiKeyEnvVar = "BRIDGE_API_KEY"

// Execute runs the root command with the given context and arguments.
func Execute(ctx context.Context, args []string) error {
	cmd := &cli.Command{
		Name:  "bridge",
		Usage: "Legacy completions over a responses-style backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (text|json)",
				Value: "text",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to a TOML config file",
			},
		},
		Commands: []*cli.Command{
			completeCommand(),
			authCommand(),
		},
	}

	return cmd.Run(ctx, args)
}

// setup installs logging from the global flags and loads the configuration.
func setup(cmd *cli.Command) (*config.Config, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, err
	}

	if err := observability.Instrument(level, cmd.String("log-format")); err != nil {
		return nil, fmt.Errorf("failed to set up observability layer: %w", err)
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// apiKeySource resolves backend credentials: the environment variable wins,
// then the OS keyring populated by 'bridge auth login'.
func apiKeySource() (oauth2.TokenSource, error) {
	if key := os.Getenv(apiKeyEnvVar); key != "" {
		return tokensource.FromAPIKey(key), nil
	}

	source, err := tokensource.FromKeyring()
	if err != nil {
		return nil, fmt.Errorf("no API key found (set %s or run 'bridge auth login'): %w", apiKeyEnvVar, err)
	}
	return source, nil
}
