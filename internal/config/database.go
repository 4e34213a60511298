package config

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alfredoptarigan/talent-screener/internal/logger"
	"alfredoptarigan/talent-screener/internal/models"
)

const (
	maxOpenConns = 4
	pingTimeout  = 5 * time.Second
)

// InitDatabase connects to Postgres and creates the session_blobs table.
func InitDatabase(cfg *Config, log *zap.Logger) (*gorm.DB, error) {
	log = logger.OrNop(log)

	logLevel := gormlogger.Silent
	if cfg.Server.Env == "development" && cfg.Log.Debug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.GetDatabaseDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access database pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if err := db.AutoMigrate(&models.SessionBlob{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database ready", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	return db, nil
}
