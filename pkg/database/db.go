package database

import (
	"fmt"
	"time"

	"anoa.com/devsearch/pkg/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type Config struct {
	URL      string
	Host     string
	User     string
	Password string
	Name     string
	Port     string
	Debug    bool
}

// DSN prefers an explicit URL over the individual fields.
func (c Config) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.Host, c.User, c.Password, c.Name, c.Port,
	)
}

// Connect opens the postgres pool. Callers own the returned handle.
func Connect(cfg Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         gormlogger.New(logger.Log, gormlogger.Config{SlowThreshold: 200 * time.Millisecond, LogLevel: level, IgnoreRecordNotFoundError: true}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
