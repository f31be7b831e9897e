package db

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"async-standup/internal/config"
	"async-standup/pkg/logger"
)

const (
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 30 * time.Minute
)

// Open connects to the relational store selected by driver.
func Open(driver string, cfg config.DBConfig, log logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.StorageDriverPostgres:
		if cfg.DSN != "" {
			log.Info("db: connecting to postgres using DSN")
		} else {
			log.Info("db: connecting to postgres", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Name, "sslmode", cfg.SSLMode)
		}
		dialector = postgres.Open(cfg.GetDSN())
	case config.StorageDriverMySQL:
		if cfg.DSN != "" {
			log.Info("db: connecting to mysql using DSN")
		} else {
			log.Info("db: connecting to mysql", "host", cfg.Host, "port", cfg.Port, "dbname", cfg.Name)
		}
		dialector = mysql.Open(cfg.GetMySQLDSN())
	default:
		return nil, fmt.Errorf("db: unsupported driver %q", driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("db handle: %w", err)
	}

	maxOpen := cfg.MaxOpenConns
	if maxOpen == 0 {
		maxOpen = defaultMaxOpenConns
	}
	maxIdle := cfg.MaxIdleConns
	if maxIdle == 0 {
		maxIdle = defaultMaxIdleConns
	}
	connMaxLifetime := cfg.ConnMaxLifetime
	if connMaxLifetime == 0 {
		connMaxLifetime = defaultConnMaxLifetime
	}

	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}

	log.Info("db: connected", "driver", driver)
	return gormDB, nil
}
