package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	IngestStatusRunning   = "running"
	IngestStatusSucceeded = "succeeded"
	IngestStatusFailed    = "failed"
)

// IngestRun is one ledger entry per ingestion of a source file.
type IngestRun struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Dataset       string         `gorm:"column:dataset;not null;index" json:"dataset"`
	SourcePath    string         `gorm:"column:source_path;not null" json:"source_path"`
	SourceSHA256  string         `gorm:"column:source_sha256;not null;index" json:"source_sha256"`
	Status        string         `gorm:"column:status;not null;index" json:"status"`
	ChunkSize     int            `gorm:"column:chunk_size;not null;default:0" json:"chunk_size"`
	RowLimit      int            `gorm:"column:row_limit;not null;default:0" json:"row_limit"`
	Chunks        int            `gorm:"column:chunks;not null;default:0" json:"chunks"`
	RowsProcessed int            `gorm:"column:rows_processed;not null;default:0" json:"rows_processed"`
	RowsSkipped   int            `gorm:"column:rows_skipped;not null;default:0" json:"rows_skipped"`
	WarningCount  int            `gorm:"column:warning_count;not null;default:0" json:"warning_count"`
	Warnings      datatypes.JSON `gorm:"column:warnings" json:"warnings"`
	Error         string         `gorm:"column:error" json:"error,omitempty"`
	StartedAt     time.Time      `gorm:"not null;index" json:"started_at"`
	FinishedAt    *time.Time     `gorm:"column:finished_at" json:"finished_at,omitempty"`
}

func (IngestRun) TableName() string { return "ingest_run" }
