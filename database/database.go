// database.go - Opens the database connection pool

package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres" // Production dialect
	"gorm.io/driver/sqlite"   // Development and test dialect
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go-blog-backend/config"
)

// Open connects to the configured database and sizes its pool. The returned
// handle is never used directly by request code; see Sessions.
func Open(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.PostgresDSN())
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.DBPath))
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true, // unique / foreign key violations become gorm errors
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(log),
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(PoolSize(cfg))
	sqlDB.SetMaxIdleConns(min(cfg.DBMaxIdleConns, PoolSize(cfg)))
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping %s database: %w", cfg.DBDriver, err)
	}

	log.WithFields(logrus.Fields{
		"driver": cfg.DBDriver,
		"pool":   PoolSize(cfg),
	}).Info("database connected")
	return db, nil
}

// PoolSize is the number of concurrent sessions the database accepts.
// SQLite serializes writers, so it gets a single connection.
func PoolSize(cfg *config.Config) int {
	if cfg.DBDriver == "sqlite" {
		return 1
	}
	return cfg.DBMaxOpenConns
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func sqliteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func gormLogLevel(log *logrus.Logger) gormlogger.LogLevel {
	switch {
	case log.IsLevelEnabled(logrus.DebugLevel):
		return gormlogger.Info
	case log.IsLevelEnabled(logrus.WarnLevel):
		return gormlogger.Warn
	default:
		return gormlogger.Error
	}
}
