package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/moviegraph/internal/catalog"
	"github.com/yungbote/moviegraph/internal/data/repos"
	types "github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/ingestion/csvsource"
	"github.com/yungbote/moviegraph/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/moviegraph/internal/pkg/errors"
	"github.com/yungbote/moviegraph/internal/pkg/retry"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

type IngestFileOptions struct {
	// Force re-ingests a file whose checksum already has a successful run.
	Force     bool
	ChunkSize int
	Limit     int
	Progress  func(catalog.Progress)
}

type IngestOutcome struct {
	Run    *types.IngestRun      `json:"run,omitempty"`
	Report *catalog.IngestReport `json:"report,omitempty"`
	// Skipped is set when an earlier successful run covered the same file.
	Skipped bool `json:"skipped"`
}

type IngestService interface {
	IngestFile(ctx context.Context, ds catalog.Dataset, path string, opts IngestFileOptions) (*IngestOutcome, error)
	ListRuns(ctx context.Context, dataset string, limit int) ([]*types.IngestRun, error)
}

type ingestService struct {
	catalog *catalog.Catalog
	runs    repos.IngestRunRepo
	log     *logger.Logger
}

// NewIngestService returns a service that records every run in runs. A nil runs
// repo disables the ledger: files are always ingested and nothing is recorded.
func NewIngestService(cat *catalog.Catalog, runs repos.IngestRunRepo, baseLog *logger.Logger) IngestService {
	return &ingestService{
		catalog: cat,
		runs:    runs,
		log:     baseLog.With("service", "IngestService"),
	}
}

func (s *ingestService) IngestFile(ctx context.Context, ds catalog.Dataset, path string, opts IngestFileOptions) (*IngestOutcome, error) {
	if !ds.Valid() {
		return nil, fmt.Errorf("ingest: unknown dataset %q", ds)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", ds, err)
	}
	defer f.Close()

	sum, rows, err := fingerprint(f)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: scan %s: %w", ds, path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("ingest %s: rewind: %w", ds, err)
	}
	log := s.log.With("dataset", string(ds), "path", path, "sha256", sum)

	dbc := dbctx.Context{Ctx: ctx}
	if s.runs != nil && !opts.Force {
		prev, err := s.runs.FindSucceeded(dbc, string(ds), sum)
		if err != nil {
			return nil, fmt.Errorf("ingest %s: ledger lookup: %w", ds, err)
		}
		if prev != nil && covers(prev.RowLimit, opts.Limit) {
			log.Info("source unchanged since last successful run; skipping", "run_id", prev.ID.String())
			return &IngestOutcome{Run: prev, Skipped: true}, nil
		}
	}

	var run *types.IngestRun
	if s.runs != nil {
		run, err = s.runs.Create(dbc, &types.IngestRun{
			ID:           uuid.New(),
			Dataset:      string(ds),
			SourcePath:   path,
			SourceSHA256: sum,
			ChunkSize:    opts.ChunkSize,
			RowLimit:     opts.Limit,
		})
		if err != nil {
			return nil, fmt.Errorf("ingest %s: record run: %w", ds, err)
		}
		log = log.With("run_id", run.ID.String())
	}

	log.Info("ingesting file", "rows", rows, "force", opts.Force)
	report, ingestErr := s.catalog.Ingest(ctx, ds, f, catalog.IngestOptions{
		ChunkSize: opts.ChunkSize,
		Limit:     opts.Limit,
		TotalRows: rows,
		Progress:  opts.Progress,
	})
	out := &IngestOutcome{Run: run, Report: report}
	if run == nil {
		return out, ingestErr
	}

	// The ledger must still be written when ctx was cancelled mid-run.
	finish := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	updates := finishFields(report, ingestErr)
	err = retry.Do(finish.Ctx, retry.Policy{
		Attempts:  3,
		Base:      100 * time.Millisecond,
		Retryable: func(err error) bool { return errors.Is(err, pkgerrors.ErrRetryable) },
	}, func(ctx context.Context) error {
		return s.runs.UpdateFields(dbctx.Context{Ctx: ctx}, run.ID, updates)
	})
	if err != nil {
		log.Error("failed to finalize ingest run", "error", err)
		if ingestErr == nil {
			return out, fmt.Errorf("ingest %s: finalize run: %w", ds, err)
		}
	}
	if fresh, err := s.runs.GetByID(finish, run.ID); err == nil && fresh != nil {
		out.Run = fresh
	}
	return out, ingestErr
}

func (s *ingestService) ListRuns(ctx context.Context, dataset string, limit int) ([]*types.IngestRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.ListRecent(dbctx.Context{Ctx: ctx}, dataset, limit)
}

// fingerprint hashes r and counts its CSV records in a single pass.
func fingerprint(r io.Reader) (string, int, error) {
	h := sha256.New()
	rows, err := csvsource.CountRows(io.TeeReader(r, h))
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), rows, nil
}

// covers reports whether a run made with prevLimit ingested at least as many rows
// as one with limit would. Zero means unlimited.
func covers(prevLimit, limit int) bool {
	if prevLimit == 0 {
		return true
	}
	return limit > 0 && limit <= prevLimit
}

func finishFields(report *catalog.IngestReport, ingestErr error) map[string]interface{} {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":      types.IngestStatusSucceeded,
		"finished_at": now,
	}
	if ingestErr != nil {
		updates["status"] = types.IngestStatusFailed
		updates["error"] = ingestErr.Error()
	}
	if report == nil {
		return updates
	}
	updates["chunks"] = report.Chunks
	updates["rows_processed"] = report.RowsProcessed
	updates["rows_skipped"] = report.RowsSkipped
	updates["warning_count"] = report.WarningCount
	if len(report.Warnings) > 0 {
		if raw, err := json.Marshal(report.Warnings); err == nil {
			updates["warnings"] = datatypes.JSON(raw)
		}
	}
	return updates
}
