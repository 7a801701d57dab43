package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/topic-scheduler/config"
)

// InitJournalDB opens the promotion journal database. Returns (nil, nil) when
// the journal is disabled by config.
func InitJournalDB(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}

	switch cfg.Journal.Driver {
	case "":
		return nil, nil
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Journal.DSN), gormCfg)
	case "postgres":
		return gorm.Open(postgres.Open(cfg.Journal.DSN), gormCfg)
	default:
		return nil, fmt.Errorf("unknown journal driver %q", cfg.Journal.Driver)
	}
}
