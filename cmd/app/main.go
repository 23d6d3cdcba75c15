package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/eliasvk/tracksync/internal"
	pkgconfig "github.com/eliasvk/tracksync/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runSignIn(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.SignIn(ctx, cfg, cmd.String("email"), cmd.String("password"))
}

func runSync(scope string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sum, err := internal.SyncOnce(ctx, cfg, scope)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d day(s): %d task(s), %d propert(ies) written, %d day(s) without a note\n",
			sum.Days, sum.Tasks, sum.Written, sum.Skipped)
		return nil
	}
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:  "tracksync",
		Usage: "Sync TimeFlip time-tracking reports into daily note frontmatter properties",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("TRACKSYNC_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "sign-in",
				Usage:  "Exchange account credentials for a session token",
				Action: runSignIn,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "email",
						Usage:   "Account email (falls back to stored settings)",
						Sources: cli.EnvVars("TRACKSYNC_EMAIL"),
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Account password (falls back to stored settings)",
						Sources: cli.EnvVars("TRACKSYNC_PASSWORD"),
					},
				},
			},
			{
				Name:  "sync",
				Usage: "Run one sync flow",
				Commands: []*cli.Command{
					{
						Name:   "today",
						Usage:  "Import today's data into today's daily note",
						Action: runSync("today"),
					},
					{
						Name:   "all",
						Usage:  "Import all available data into existing daily notes",
						Action: runSync("all"),
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the background daemon: scheduled syncs, note watcher, HTTP API",
				Action: runServe,
			},
			{
				Name:   "mcp",
				Usage:  "Run the MCP server on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
