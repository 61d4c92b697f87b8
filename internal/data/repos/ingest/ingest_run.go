package ingest

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/pkg/dbctx"
	"github.com/yungbote/moviegraph/internal/platform/logger"
)

type IngestRunRepo interface {
	Create(dbc dbctx.Context, run *types.IngestRun) (*types.IngestRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestRun, error)
	FindSucceeded(dbc dbctx.Context, dataset, sha256 string) (*types.IngestRun, error)
	ListRecent(dbc dbctx.Context, dataset string, limit int) ([]*types.IngestRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type ingestRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestRunRepo(db *gorm.DB, baseLog *logger.Logger) IngestRunRepo {
	return &ingestRunRepo{
		db:  db,
		log: baseLog.With("repo", "IngestRunRepo"),
	}
}

// Create stores run, assigning an id and start time when unset.
func (r *ingestRunRepo) Create(dbc dbctx.Context, run *types.IngestRun) (*types.IngestRun, error) {
	if run == nil {
		return nil, errors.New("ingest run required")
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = types.IngestStatusRunning
	}
	if err := dbc.DB(r.db).Create(run).Error; err != nil {
		return nil, mapError("create ingest run", err)
	}
	return run, nil
}

func (r *ingestRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestRun, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var out types.IngestRun
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&out).Error; err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

// FindSucceeded returns the latest successful run of dataset over a file with the
// given checksum, or nil.
func (r *ingestRunRepo) FindSucceeded(dbc dbctx.Context, dataset, sha256 string) (*types.IngestRun, error) {
	if dataset == "" || sha256 == "" {
		return nil, nil
	}
	var out types.IngestRun
	err := dbc.DB(r.db).
		Where("dataset = ? AND source_sha256 = ? AND status = ?", dataset, sha256, types.IngestStatusSucceeded).
		Order("started_at DESC").
		Limit(1).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	if out.ID == uuid.Nil {
		return nil, nil
	}
	return &out, nil
}

func (r *ingestRunRepo) ListRecent(dbc dbctx.Context, dataset string, limit int) ([]*types.IngestRun, error) {
	if limit <= 0 {
		limit = 20
	}
	q := dbc.DB(r.db).Order("started_at DESC").Limit(limit)
	if dataset != "" {
		q = q.Where("dataset = ?", dataset)
	}
	var out []*types.IngestRun
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ingestRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	err := dbc.DB(r.db).
		Model(&types.IngestRun{}).
		Where("id = ?", id).
		Updates(updates).Error
	return mapError("update ingest run", err)
}
