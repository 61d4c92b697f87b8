package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/yungbote/moviegraph/internal/app"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the query API over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides HTTP_ADDR)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			tweak := func(cfg *app.Config) {
				if v := cmd.String("addr"); v != "" {
					cfg.HTTPAddr = v
				}
			}
			return withApp(ctx, cmd, tweak, func(ctx context.Context, a *app.App) error {
				return a.Serve(ctx)
			})
		},
	}
}
