package infra

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"pmsportal/internal/models/db_models"
)

// InitPostgresql opens the connection pool and migrates the schema.
func InitPostgresql(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("POSTGRES_URL is required")
	}

	connectionPool, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := connectionPool.DB()
	if err != nil {
		return nil, fmt.Errorf("get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := Migrate(connectionPool); err != nil {
		return nil, err
	}

	log.Info().Msg("PostgreSQL connection established")
	return connectionPool, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&db_models.PaymentTransaction{},
		&db_models.WebhookEvent{},
		&db_models.Inquiry{},
		&db_models.Client{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

func ClosePostgresql(db *gorm.DB, log zerolog.Logger) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Error().Err(err).Msg("Error getting database instance")
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	} else {
		log.Info().Msg("PostgreSQL database connection closed")
	}
}

func StartTransaction(db *gorm.DB) (*gorm.DB, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin transaction: %w", tx.Error)
	}
	return tx, nil
}

// ReleaseTransaction commits tx when err is nil and rolls it back otherwise.
func ReleaseTransaction(tx *gorm.DB, err error) error {
	if err != nil {
		if rollbackErr := tx.Rollback().Error; rollbackErr != nil {
			return fmt.Errorf("rollback after %v: %w", err, rollbackErr)
		}
		return err
	}
	if commitErr := tx.Commit().Error; commitErr != nil {
		return fmt.Errorf("commit transaction: %w", commitErr)
	}
	return nil
}
