// Package repo implements the data persistence layer for webhook records,
// backed by GORM. This file contains database bootstrapping helpers for MySQL
// (production) and SQLite (pure Go driver, local runs and tests), the
// startup connectivity check, and schema migrations.
package repo

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	sqlite "github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/collin-ho/vs-mysql/internal/config"
	"github.com/collin-ho/vs-mysql/internal/domain"
)

// Open connects to the store described by cfg, tunes the connection pool and
// installs the OpenTelemetry tracing plugin. Use Ping to check connectivity.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "mysql":
		db, err = OpenMySQL(cfg)
	case "sqlite":
		db, err = OpenSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported DB driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, fmt.Errorf("install tracing plugin: %w", err)
	}
	return db, nil
}

// MySQLDSN renders the driver DSN for cfg. Timestamps are parsed in UTC and
// DB_SSL enables TLS without certificate verification, which is what hosted
// MySQL offerings with self-signed certificates need.
func MySQLDSN(cfg config.DBConfig) string {
	mc := gomysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Params = map[string]string{"charset": "utf8mb4"}
	if cfg.SSL {
		mc.TLSConfig = "skip-verify"
	}
	return mc.FormatDSN()
}

// OpenMySQL opens a MySQL connection pool through the GORM MySQL dialector.
// Opening never dials the server, so the service can start (and report
// itself unhealthy) while the database is unreachable.
func OpenMySQL(cfg config.DBConfig) (*gorm.DB, error) {
	dialector := mysql.New(mysql.Config{
		DSN:                       MySQLDSN(cfg),
		SkipInitializeWithVersion: true,
		DefaultStringSize:         255,
	})
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:               logger.Default.LogMode(logger.Warn),
		DisableAutomaticPing: true,
	})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// PRAGMAs
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	return db, nil
}

// Ping verifies that a connection can be acquired and a trivial statement
// executed.
func Ping(ctx context.Context, db *gorm.DB) error {
	var one int
	return db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// AutoMigrate creates or updates the call_history and contacts tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.CallHistory{},
		&domain.Contact{},
	)
}
