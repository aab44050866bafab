package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/chrissnell/trackreconcile/internal/log"
	"go.uber.org/zap"
)

// CreateConnection opens a Postgres connection with the standard GORM configuration,
// routing GORM's own log output through zap
func CreateConnection(connectionString string) (*gorm.DB, error) {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	log.Info("connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(connectionString), &gorm.Config{Logger: dbLogger})
	if err != nil {
		return nil, fmt.Errorf("unable to create a Postgres connection: %w", err)
	}
	log.Info("Postgres connection successful")

	return db, nil
}

// Migrate creates or updates the sample and audit tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&LocationPoint{}, &ReconciliationAudit{}); err != nil {
		return fmt.Errorf("error migrating tables: %w", err)
	}
	return nil
}
