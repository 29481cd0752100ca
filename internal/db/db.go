package db

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vive-gamer/internal/config"
)

// ErrNoDatabase means DATABASE_URL is empty and persistence is off.
var ErrNoDatabase = errors.New("DATABASE_URL is not set")

// Open connects to Postgres and applies the pool limits from cfg.
func Open(cfg config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, ErrNoDatabase
	}
	conn, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(config.Seconds(cfg.DBConnMaxLifetimeSeconds))
	return conn, nil
}

// Migrate runs GORM auto-migrations for the word library and event log.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(&WordLibrary{}, &Event{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	logrus.Info("database migration complete")
	return nil
}
