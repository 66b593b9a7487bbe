package model

import (
	"golang.org/x/xerrors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func OpenDatabase(name string) (*gorm.DB, error) {

	DB, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, xerrors.Errorf("open run ledger %s: %w", name, err)
	}

	// create or migrate the ledger tables.
	if err := ConfigureModels(DB); err != nil {
		return nil, err
	}
	return DB, nil
}

func ConfigureModels(db *gorm.DB) error {
	if err := db.AutoMigrate(&SweepRun{}, &TokenOutcome{}); err != nil {
		return xerrors.Errorf("migrate run ledger: %w", err)
	}
	return nil
}
