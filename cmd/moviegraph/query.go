package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/yungbote/moviegraph/internal/app"
	"github.com/yungbote/moviegraph/internal/catalog"
)

func out(cmd *cli.Command) printer {
	return printer{w: cmd.Root().Writer, json: cmd.Bool("json")}
}

// joinedArg treats all positional args as one space separated value so that
// unquoted names still work.
func joinedArg(cmd *cli.Command, what string) (string, error) {
	v := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if v == "" {
		return "", fmt.Errorf("%s argument required", what)
	}
	return v, nil
}

func limitFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "limit",
		Usage: "number of rows to return",
		Value: catalog.DefaultTopLimit,
	}
}

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:  "query",
		Usage: "Ask the movie graph a question",
		Commands: []*cli.Command{
			{
				Name:      "director",
				Usage:     "Movies directed by a person",
				ArgsUsage: "NAME",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					name, err := joinedArg(cmd, "director name")
					if err != nil {
						return err
					}
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						movies, err := a.Catalog.MoviesByDirector(ctx, name)
						if err != nil {
							return err
						}
						return out(cmd).movies("movies directed by "+name, movies)
					})
				},
			},
			{
				Name:      "actors",
				Usage:     "Movies featuring every listed actor",
				ArgsUsage: "NAME [NAME...]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					names := cmd.Args().Slice()
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						movies, err := a.Catalog.MoviesByActors(ctx, names)
						if err != nil {
							return err
						}
						return out(cmd).movies("movies featuring "+strings.Join(names, ", "), movies)
					})
				},
			},
			{
				Name:      "genre",
				Usage:     "Movies of a genre released after a year",
				ArgsUsage: "GENRE",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "after", Usage: "only movies released strictly after this year"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					genre, err := joinedArg(cmd, "genre")
					if err != nil {
						return err
					}
					after := cmd.Int64("after")
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						movies, err := a.Catalog.MoviesByGenreSince(ctx, genre, after)
						if err != nil {
							return err
						}
						return out(cmd).movies(fmt.Sprintf("movies in the %s genre (after %d)", genre, after), movies)
					})
				},
			},
			{
				Name:      "country",
				Usage:     "Movies produced in a country (ISO 3166-1 code)",
				ArgsUsage: "CODE",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					code, err := joinedArg(cmd, "country code")
					if err != nil {
						return err
					}
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						movies, err := a.Catalog.MoviesByCountry(ctx, code)
						if err != nil {
							return err
						}
						return out(cmd).movies("movies produced in "+strings.ToUpper(code), movies)
					})
				},
			},
			{
				Name:  "top-genres",
				Usage: "Genres ranked by number of movies",
				Flags: []cli.Flag{limitFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						genres, err := a.Catalog.TopGenres(ctx, cmd.Int("limit"))
						if err != nil {
							return err
						}
						return out(cmd).genres(genres)
					})
				},
			},
			{
				Name:  "collaborators",
				Usage: "Actor and director pairs ranked by shared movies",
				Flags: []cli.Flag{limitFlag()},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						pairs, err := a.Catalog.TopCollaborators(ctx, cmd.Int("limit"))
						if err != nil {
							return err
						}
						return out(cmd).collaborators(pairs)
					})
				},
			},
			{
				Name:  "cameos",
				Usage: "Movies whose director also acted in them",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						cameos, err := a.Catalog.DirectorCameos(ctx)
						if err != nil {
							return err
						}
						return out(cmd).cameos(cameos)
					})
				},
			},
			{
				Name:  "counts",
				Usage: "Node and relationship totals",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
						counts, err := a.Catalog.Counts(ctx)
						if err != nil {
							return err
						}
						p := out(cmd)
						return p.emit(counts, func(w io.Writer) {
							fmt.Fprintf(w, "nodes:\t%d\nrelationships:\t%d\n", counts.Nodes, counts.Relationships)
						})
					})
				},
			},
		},
	}
}
