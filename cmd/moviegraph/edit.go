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

func linkCommand() *cli.Command {
	return &cli.Command{
		Name:  "link",
		Usage: "Add an acting credit for a person on a movie",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "person", Usage: "actor name", Required: true},
			&cli.Int64Flag{Name: "movie", Usage: "movie id", Required: true},
			&cli.StringFlag{Name: "character", Usage: "character played"},
			&cli.Int64Flag{Name: "order", Usage: "billing order"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			link := domain.ActingLink{
				Person:    cmd.String("person"),
				MovieID:   cmd.Int64("movie"),
				Character: cmd.String("character"),
				Order:     cmd.Int64("order"),
			}
			return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
				res, err := a.Catalog.LinkActor(ctx, link)
				if err != nil {
					return err
				}
				return out(cmd).emit(res, func(w io.Writer) { fmt.Fprintln(w, describeLink(link, res)) })
			})
		},
	}
}

func unlinkCommand() *cli.Command {
	return &cli.Command{
		Name:  "unlink",
		Usage: "Remove every acting credit of a person on a movie",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "person", Usage: "actor name", Required: true},
			&cli.Int64Flag{Name: "movie", Usage: "movie id", Required: true},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			person, movieID := cmd.String("person"), cmd.Int64("movie")
			return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
				res, err := a.Catalog.UnlinkActor(ctx, person, movieID)
				if err != nil {
					return err
				}
				return out(cmd).emit(res, func(w io.Writer) { fmt.Fprintln(w, describeUnlink(person, movieID, res)) })
			})
		},
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recent ingestion runs from the ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dataset", Usage: "movies or credits (default both)"},
			&cli.IntFlag{Name: "limit", Value: 20, Usage: "number of runs"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dataset := cmd.String("dataset")
			if dataset != "" && !catalog.Dataset(dataset).Valid() {
				return fmt.Errorf("unknown dataset %q", dataset)
			}
			return withApp(ctx, cmd, nil, func(ctx context.Context, a *app.App) error {
				runs, err := a.Services.Ingest.ListRuns(ctx, dataset, cmd.Int("limit"))
				if err != nil {
					return err
				}
				return out(cmd).emit(runs, func(w io.Writer) {
					if len(runs) == 0 {
						fmt.Fprintln(w, "No ingestion runs recorded.")
						return
					}
					fmt.Fprintln(w, "STARTED\tDATASET\tSTATUS\tROWS\tSKIPPED\tWARNINGS\tSHA256")
					for _, r := range runs {
						fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%.12s\n",
							r.StartedAt.Format("2006-01-02 15:04:05"), r.Dataset, r.Status,
							r.RowsProcessed, r.RowsSkipped, r.WarningCount, r.SourceSHA256)
					}
				})
			})
		},
	}
}

func describeLink(link domain.ActingLink, res domain.LinkResult) string {
	switch {
	case !res.Linked:
		return fmt.Sprintf("Failed to link actor %s: movie %d not found.", link.Person, link.MovieID)
	case !res.Created:
		return fmt.Sprintf("Actor %s was already linked to movie %d.", link.Person, link.MovieID)
	default:
		return fmt.Sprintf("Linked actor %s to movie %d.", link.Person, link.MovieID)
	}
}

func describeUnlink(person string, movieID int64, res domain.UnlinkResult) string {
	if res.Removed == 0 {
		return fmt.Sprintf("Actor %s had no acting credit on movie %d.", person, movieID)
	}
	return fmt.Sprintf("Unlinked actor %s from movie %d (%d credits removed).", person, movieID, res.Removed)
}
