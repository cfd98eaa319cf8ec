// Package db opens the GORM connection used for host product storage.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/wyfcoding/catalogpricing/pkg/config"
	"github.com/wyfcoding/pkg/logging"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps *gorm.DB.
type DB struct {
	*gorm.DB
}

// Init opens the database, configures the pool and pings it. SQL tracing goes
// through l when cfg.LogEnabled is set; otherwise GORM is silenced.
func Init(cfg config.DatabaseConfig, l *logging.Logger) (*DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	gormLog := gormlogger.Discard
	if cfg.LogEnabled && l != nil {
		gormLog = logging.NewGormLogger(l, time.Duration(cfg.SlowQueryThreshold)*time.Millisecond)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetime) * time.Second)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logging.Info(context.Background(), "Database connected successfully", "driver", cfg.Driver)
	return &DB{DB: gdb}, nil
}

// Close closes the underlying pool.
func (d *DB) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
