package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/yungbote/moviegraph/internal/app"
	"github.com/yungbote/moviegraph/internal/catalog"
	"github.com/yungbote/moviegraph/internal/services"
)

func ingestCommand() *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Load the movies and/or credits CSV into the graph",
		ArgsUsage: "[movies|credits|all]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "movies", Usage: "movies CSV path", Sources: cli.EnvVars("MOVIES_DATASET_CSV_PATH")},
			&cli.StringFlag{Name: "credits", Usage: "credits CSV path", Sources: cli.EnvVars("CREDITS_DATASET_CSV_PATH")},
			&cli.IntFlag{Name: "chunk-size", Usage: "records per graph transaction (0 uses the configured size)"},
			&cli.IntFlag{Name: "limit", Usage: "stop after this many records per file (0 uses the configured limit)"},
			&cli.BoolFlag{Name: "force", Usage: "ingest even if an identical file already succeeded"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			datasets, err := datasetsArg(cmd.Args().First())
			if err != nil {
				return err
			}
			tweak := func(cfg *app.Config) {
				if v := cmd.String("movies"); v != "" {
					cfg.Ingest.MoviesPath = v
				}
				if v := cmd.String("credits"); v != "" {
					cfg.Ingest.CreditsPath = v
				}
				if v := cmd.Int("chunk-size"); v > 0 {
					cfg.Ingest.ChunkSize = v
				}
				if v := cmd.Int("limit"); v > 0 {
					cfg.Ingest.Limit = v
				}
			}
			return withApp(ctx, cmd, tweak, func(ctx context.Context, a *app.App) error {
				return ingestAll(ctx, a, datasets, cmd.Bool("force"), cmd.Root().ErrWriter, out(cmd))
			})
		},
	}
}

func datasetsArg(arg string) ([]catalog.Dataset, error) {
	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "all":
		return []catalog.Dataset{catalog.DatasetMovies, catalog.DatasetCredits}, nil
	case string(catalog.DatasetMovies):
		return []catalog.Dataset{catalog.DatasetMovies}, nil
	case string(catalog.DatasetCredits):
		return []catalog.Dataset{catalog.DatasetCredits}, nil
	default:
		return nil, fmt.Errorf("unknown dataset %q (want movies, credits or all)", arg)
	}
}

// ingestAll installs the schema and ingests datasets in order. Movies go first so
// credits can attach their edges.
func ingestAll(ctx context.Context, a *app.App, datasets []catalog.Dataset, force bool, progress io.Writer, p printer) error {
	if err := a.Catalog.Setup(ctx); err != nil {
		return err
	}
	outcomes := make([]*services.IngestOutcome, 0, len(datasets))
	for _, ds := range datasets {
		path := a.Cfg.Ingest.MoviesPath
		if ds == catalog.DatasetCredits {
			path = a.Cfg.Ingest.CreditsPath
		}
		outcome, err := a.Services.Ingest.IngestFile(ctx, ds, path, services.IngestFileOptions{
			Force:     force,
			ChunkSize: a.Cfg.Ingest.ChunkSize,
			Limit:     a.Cfg.Ingest.Limit,
			Progress:  progressPrinter(progress),
		})
		if err != nil {
			return err
		}
		outcomes = append(outcomes, outcome)
	}
	return p.emit(outcomes, func(w io.Writer) {
		for i, o := range outcomes {
			ds := datasets[i]
			if o.Skipped {
				fmt.Fprintf(w, "%s:\tunchanged since run %s, skipped (use --force to reload)\n", ds, o.Run.ID)
				continue
			}
			r := o.Report
			fmt.Fprintf(w, "%s:\t%d rows in %d chunks\t%d skipped\t%d warnings\t%d nodes, %d relationships created\t%s\n",
				ds, r.RowsProcessed, r.Chunks, r.RowsSkipped, r.WarningCount,
				r.Stats.NodesCreated, r.Stats.RelationshipsCreated, r.Duration.Round(time.Millisecond))
		}
	})
}

func progressPrinter(w io.Writer) func(catalog.Progress) {
	if w == nil {
		return nil
	}
	return func(p catalog.Progress) {
		total := "?"
		if p.TotalChunks > 0 {
			total = fmt.Sprint(p.TotalChunks)
		}
		fmt.Fprintf(w, "\r%s: chunk %d/%s, %d rows, %d skipped", p.Dataset, p.Chunk, total, p.RowsProcessed, p.RowsSkipped)
		if p.TotalChunks > 0 && p.Chunk == p.TotalChunks {
			fmt.Fprintln(w)
		}
	}
}
