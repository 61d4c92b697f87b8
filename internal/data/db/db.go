package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/moviegraph/internal/platform/logger"
)

// Service owns the ledger database handle.
type Service struct {
	db      *gorm.DB
	dialect string
	log     *logger.Logger
}

// Dialect picks the gorm driver for dsn: postgres URLs and key=value strings go to
// postgres, everything else is treated as a sqlite path.
func Dialect(dsn string) string {
	d := strings.TrimSpace(dsn)
	switch {
	case strings.HasPrefix(d, "postgres://"), strings.HasPrefix(d, "postgresql://"):
		return "postgres"
	case strings.Contains(d, "host=") && strings.Contains(d, "dbname="):
		return "postgres"
	default:
		return "sqlite"
	}
}

func Open(dsn string, logg *logger.Logger) (*Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("db: logger required")
	}
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db: missing ledger dsn")
	}
	serviceLog := logg.With("service", "LedgerDB")

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	cfg := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	}

	dialect := Dialect(dsn)
	var dialector gorm.Dialector
	if dialect == "postgres" {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, "sqlite://"))
	}
	gdb, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("db: connect %s: %w", dialect, err)
	}
	if err := AutoMigrateAll(gdb); err != nil {
		return nil, fmt.Errorf("db: migrate: %w", err)
	}
	serviceLog.Info("ledger database ready", "dialect", dialect, "dsn", dsn)
	return &Service{db: gdb, dialect: dialect, log: serviceLog}, nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Dialect() string { return s.dialect }

func (s *Service) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
