package infra

import (
	"fmt"

	"pixelfood/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the GORM connection used by the Postgres session store and
// migrates the single table the terminal owns (sesiones_terminal). Catalog and
// order data are never stored locally; the backend is the only authority.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// One terminal, one session row: a tiny pool is plenty.
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetMaxIdleConns(1)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates or updates the terminal tables. Also used by the
// integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&model.SesionGuardada{}); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return nil
}
