package db

import (
	"gorm.io/gorm"

	types "github.com/yungbote/moviegraph/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.IngestRun{},
	)
}
