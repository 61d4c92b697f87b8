package main

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/yungbote/moviegraph/internal/app"
	"github.com/yungbote/moviegraph/internal/catalog"
	"github.com/yungbote/moviegraph/internal/domain"
)

const avatarID = 19995

type demoOptions struct {
	Limit     int
	ChunkSize int
	LinkMovie int64
}

func demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Populate an empty graph with a sample and run the example queries",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 100, Usage: "rows to load from each file when the graph is empty"},
			&cli.IntFlag{Name: "chunk-size", Value: 10, Usage: "records per graph transaction"},
			&cli.Int64Flag{Name: "link-movie", Value: avatarID, Usage: "movie id used for the link/unlink step"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			opts := demoOptions{
				Limit:     cmd.Int("limit"),
				ChunkSize: cmd.Int("chunk-size"),
				LinkMovie: cmd.Int64("link-movie"),
			}
			return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
				return runDemo(ctx, a, cmd.Root().Writer, opts)
			})
		},
	}
}

func runDemo(ctx context.Context, a *app.App, w io.Writer, opts demoOptions) error {
	fmt.Fprintln(w, "Setting up catalog...")
	if err := a.Catalog.Setup(ctx); err != nil {
		return err
	}
	empty, err := a.Catalog.IsEmpty(ctx)
	if err != nil {
		return err
	}
	if empty {
		a.Cfg.Ingest.Limit = opts.Limit
		a.Cfg.Ingest.ChunkSize = opts.ChunkSize
		fmt.Fprintf(w, "Populating catalog from %s and %s ...\n", a.Cfg.Ingest.MoviesPath, a.Cfg.Ingest.CreditsPath)
		datasets := []catalog.Dataset{catalog.DatasetMovies, catalog.DatasetCredits}
		// An empty graph makes earlier ledger entries stale.
		if err := ingestAll(ctx, a, datasets, true, nil, printer{w: w}); err != nil {
			return err
		}
	}
	fmt.Fprintln(w, "Catalog setup complete.")
	fmt.Fprintln(w)
	return walkthrough(ctx, a.Catalog, printer{w: w}, opts.LinkMovie)
}

// walkthrough runs one of every query, then links and unlinks an actor.
func walkthrough(ctx context.Context, cat *catalog.Catalog, p printer, linkMovie int64) error {
	section := func(fn func() error) error {
		if err := fn(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(p.w)
		return err
	}
	steps := []func() error{
		func() error {
			movies, err := cat.MoviesByDirector(ctx, "Christopher Nolan")
			if err != nil {
				return err
			}
			return p.movies("movies directed by Christopher Nolan", movies)
		},
		func() error {
			movies, err := cat.MoviesByActors(ctx, []string{"Chris Evans", "Chris Hemsworth"})
			if err != nil {
				return err
			}
			return p.movies("movies featuring Chris Evans, Chris Hemsworth", movies)
		},
		func() error {
			movies, err := cat.MoviesByGenreSince(ctx, "Fantasy", 2010)
			if err != nil {
				return err
			}
			return p.movies("movies in the Fantasy genre (after 2010)", movies)
		},
		func() error {
			movies, err := cat.MoviesByCountry(ctx, "CA")
			if err != nil {
				return err
			}
			return p.movies("movies produced in CA", movies)
		},
		func() error {
			genres, err := cat.TopGenres(ctx, catalog.DefaultTopLimit)
			if err != nil {
				return err
			}
			return p.genres(genres)
		},
		func() error {
			pairs, err := cat.TopCollaborators(ctx, catalog.DefaultTopLimit)
			if err != nil {
				return err
			}
			return p.collaborators(pairs)
		},
		func() error {
			cameos, err := cat.DirectorCameos(ctx)
			if err != nil {
				return err
			}
			return p.cameos(cameos)
		},
		func() error {
			link := domain.ActingLink{Person: "Leonardo DiCaprio", MovieID: linkMovie}
			res, err := cat.LinkActor(ctx, link)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(p.w, describeLink(link, res)); err != nil {
				return err
			}
			unlinked, err := cat.UnlinkActor(ctx, link.Person, link.MovieID)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(p.w, describeUnlink(link.Person, link.MovieID, unlinked))
			return err
		},
	}
	for _, step := range steps {
		if err := section(step); err != nil {
			return err
		}
	}
	return nil
}
