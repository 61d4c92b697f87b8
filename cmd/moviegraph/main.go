// Command moviegraph loads the TMDB movies and credits CSVs into a Neo4j graph and
// answers questions about it from the command line or over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/yungbote/moviegraph/internal/app"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:    "moviegraph",
		Version: version,
		Usage:   "Movie knowledge graph: CSV ingestion and graph queries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML config file (environment variables override it)",
				Sources: cli.EnvVars("MOVIEGRAPH_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-mode",
				Usage: "dev, prod or test (overrides LOG_MODE)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print results as JSON",
			},
		},
		Commands: []*cli.Command{
			ingestCommand(),
			queryCommand(),
			linkCommand(),
			unlinkCommand(),
			runsCommand(),
			serveCommand(),
			demoCommand(),
		},
	}

	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig resolves the layered config plus the global flag overrides.
func loadConfig(cmd *cli.Command) (app.Config, error) {
	cfg, err := app.LoadConfig(cmd.String("config"))
	if err != nil {
		return cfg, err
	}
	if mode := cmd.String("log-mode"); mode != "" {
		cfg.LogMode = mode
	}
	return cfg, nil
}

// withApp builds the application for one command and closes it afterwards.
func withApp(ctx context.Context, cmd *cli.Command, tweak func(*app.Config), fn func(context.Context, *app.App) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if tweak != nil {
		tweak(&cfg)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Sync()
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))
	return fn(ctx, a)
}
