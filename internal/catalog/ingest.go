package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/ingestion/csvsource"
	"github.com/yungbote/moviegraph/internal/ingestion/transform"
)

type Dataset string

const (
	DatasetMovies  Dataset = "movies"
	DatasetCredits Dataset = "credits"
)

func (d Dataset) Valid() bool { return d == DatasetMovies || d == DatasetCredits }

// MaxReportedWarnings caps the warnings kept on a report; WarningCount keeps counting.
const MaxReportedWarnings = 1000

// Warning is a skipped row or a degraded field, located by source line.
type Warning struct {
	Dataset Dataset `json:"dataset"`
	Line    int     `json:"line"`
	Field   string  `json:"field,omitempty"`
	Message string  `json:"message"`
}

func (w Warning) String() string {
	if w.Field == "" {
		return fmt.Sprintf("%s line %d: %s", w.Dataset, w.Line, w.Message)
	}
	return fmt.Sprintf("%s line %d: %s: %s", w.Dataset, w.Line, w.Field, w.Message)
}

// Progress is delivered after every merged chunk. TotalChunks is 0 when unknown.
type Progress struct {
	Dataset       Dataset
	Chunk         int
	TotalChunks   int
	RowsProcessed int
	RowsSkipped   int
	Warnings      int
	Stats         domain.MergeStats
}

type IngestOptions struct {
	// ChunkSize is the number of records per store transaction; <= 0 means 500.
	ChunkSize int
	// Limit stops after that many records when > 0.
	Limit int
	// TotalRows, when known, lets Progress report TotalChunks.
	TotalRows int
	Progress  func(Progress)
}

type IngestReport struct {
	Dataset       Dataset           `json:"dataset"`
	Chunks        int               `json:"chunks"`
	RowsProcessed int               `json:"rows_processed"`
	RowsSkipped   int               `json:"rows_skipped"`
	WarningCount  int               `json:"warning_count"`
	Warnings      []Warning         `json:"warnings,omitempty"`
	Stats         domain.MergeStats `json:"stats"`
	Duration      time.Duration     `json:"duration"`
}

func (r *IngestReport) warn(w Warning) {
	r.WarningCount++
	if len(r.Warnings) < MaxReportedWarnings {
		r.Warnings = append(r.Warnings, w)
	}
}

type rowFolder func(bb *transform.BatchBuilder, row csvsource.Row) ([]transform.Warning, error)

func foldMovie(bb *transform.BatchBuilder, row csvsource.Row) ([]transform.Warning, error) {
	res, warns, err := transform.TransformMovie(transform.MovieRowFromFields(row.Line, row.Get))
	if err != nil {
		return warns, err
	}
	bb.AddMovie(res)
	return warns, nil
}

func foldCredit(bb *transform.BatchBuilder, row csvsource.Row) ([]transform.Warning, error) {
	res, warns, err := transform.TransformCredit(transform.CreditRowFromFields(row.Line, row.Get))
	if err != nil {
		return warns, err
	}
	bb.AddCredit(res)
	return warns, nil
}

// IngestMovies merges every movie row from r. Re-running it on the same input
// changes nothing.
func (c *Catalog) IngestMovies(ctx context.Context, r io.Reader, opts IngestOptions) (*IngestReport, error) {
	return c.ingest(ctx, DatasetMovies, r, opts, foldMovie)
}

// IngestCredits merges people and their ACTED_IN and CREW edges. Credits of movies
// that are not in the graph yet produce people but no edges.
func (c *Catalog) IngestCredits(ctx context.Context, r io.Reader, opts IngestOptions) (*IngestReport, error) {
	return c.ingest(ctx, DatasetCredits, r, opts, foldCredit)
}

// Ingest dispatches on dataset.
func (c *Catalog) Ingest(ctx context.Context, ds Dataset, r io.Reader, opts IngestOptions) (*IngestReport, error) {
	switch ds {
	case DatasetMovies:
		return c.IngestMovies(ctx, r, opts)
	case DatasetCredits:
		return c.IngestCredits(ctx, r, opts)
	default:
		return nil, fmt.Errorf("catalog: unknown dataset %q", ds)
	}
}

func (c *Catalog) ingest(ctx context.Context, ds Dataset, r io.Reader, opts IngestOptions, fold rowFolder) (*IngestReport, error) {
	ctx, span := c.tracer.Start(ctx, "catalog.Ingest", trace.WithAttributes(attribute.String("dataset", string(ds))))
	defer span.End()

	start := time.Now()
	report := &IngestReport{Dataset: ds}
	size := opts.ChunkSize
	if size <= 0 {
		size = csvsource.DefaultChunkSize
	}
	reader, err := csvsource.NewChunkReader(r, size, opts.Limit)
	if err != nil {
		recordSpanError(span, err)
		return report, fmt.Errorf("catalog: ingest %s: %w", ds, err)
	}
	total := 0
	if opts.TotalRows > 0 {
		total = csvsource.TotalChunks(opts.TotalRows, size, opts.Limit)
	}
	log := c.log.With("dataset", string(ds))
	log.Info("ingestion started", "chunk_size", size, "limit", opts.Limit, "total_chunks", total)

	g, gctx := errgroup.WithContext(ctx)
	chunks := make(chan *csvsource.Chunk, 1)

	g.Go(func() error {
		defer close(chunks)
		for {
			ch, err := reader.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("catalog: ingest %s: read: %w", ds, err)
			}
			select {
			case chunks <- ch:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
	})

	g.Go(func() error {
		for ch := range chunks {
			if err := c.mergeChunk(gctx, ds, ch, fold, report); err != nil {
				return err
			}
			if opts.Progress != nil {
				opts.Progress(Progress{
					Dataset:       ds,
					Chunk:         ch.Index,
					TotalChunks:   total,
					RowsProcessed: report.RowsProcessed,
					RowsSkipped:   report.RowsSkipped,
					Warnings:      report.WarningCount,
					Stats:         report.Stats,
				})
			}
		}
		return nil
	})

	err = g.Wait()
	report.Duration = time.Since(start)
	if err != nil {
		recordSpanError(span, err)
		log.Error("ingestion failed", "error", err, "chunks", report.Chunks, "rows", report.RowsProcessed)
		return report, err
	}
	span.SetAttributes(
		attribute.Int("rows_processed", report.RowsProcessed),
		attribute.Int("rows_skipped", report.RowsSkipped),
	)
	log.Info("ingestion finished",
		"chunks", report.Chunks,
		"rows", report.RowsProcessed,
		"skipped", report.RowsSkipped,
		"warnings", report.WarningCount,
		"nodes_created", report.Stats.NodesCreated,
		"relationships_created", report.Stats.RelationshipsCreated,
		"duration", report.Duration.String(),
	)
	return report, nil
}

// mergeChunk folds one chunk into a batch and merges it in a single store call.
func (c *Catalog) mergeChunk(ctx context.Context, ds Dataset, ch *csvsource.Chunk, fold rowFolder, report *IngestReport) error {
	ctx, span := c.tracer.Start(ctx, "catalog.MergeChunk", trace.WithAttributes(
		attribute.String("dataset", string(ds)),
		attribute.Int("chunk", ch.Index),
		attribute.Int("rows", ch.Len()),
	))
	defer span.End()

	skipped := 0
	warn := func(w Warning) {
		report.warn(w)
		c.metrics.IncDataQuality(string(ds), w.Field)
		if report.WarningCount <= MaxReportedWarnings {
			c.log.Warn("row warning", "dataset", string(ds), "line", w.Line, "field", w.Field, "message", w.Message)
		}
	}

	for _, bad := range ch.Bad {
		skipped++
		warn(Warning{Dataset: ds, Line: bad.Line, Message: bad.Err.Error()})
	}

	bb := transform.NewBatchBuilder()
	for _, row := range ch.Rows {
		warns, err := fold(bb, row)
		for _, w := range warns {
			warn(Warning{Dataset: ds, Line: w.Line, Field: w.Field, Message: w.Message})
		}
		if err != nil {
			if !errors.Is(err, transform.ErrRowRejected) {
				return fmt.Errorf("catalog: ingest %s chunk %d line %d: %w", ds, ch.Index, row.Line, err)
			}
			skipped++
			warn(Warning{Dataset: ds, Line: row.Line, Message: err.Error()})
		}
	}

	start := time.Now()
	stats, err := c.store.MergeBatch(ctx, bb.Batch())
	if err != nil {
		recordSpanError(span, err)
		c.metrics.ObserveIngestChunk(string(ds), "error", time.Since(start))
		return fmt.Errorf("catalog: ingest %s chunk %d: %w", ds, ch.Index, err)
	}
	c.metrics.ObserveIngestChunk(string(ds), "ok", time.Since(start))
	c.metrics.AddIngestRows(string(ds), ch.Len()-skipped, skipped)

	report.Chunks++
	report.RowsProcessed += ch.Len()
	report.RowsSkipped += skipped
	report.Stats.Add(stats)
	c.log.Debug("chunk merged",
		"dataset", string(ds),
		"chunk", ch.Index,
		"rows", ch.Len(),
		"skipped", skipped,
		"nodes_created", stats.NodesCreated,
		"relationships_created", stats.RelationshipsCreated,
	)
	return nil
}
