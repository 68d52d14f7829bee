package repo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/collin-ho/vs-mysql/internal/config"
	"github.com/collin-ho/vs-mysql/internal/domain"
)

func TestOpenSQLite_ErrorOnBadPath(t *testing.T) {
	base := t.TempDir()
	bad := filepath.Join(base, "does-not-exist", "app.db")

	db, err := OpenSQLite(bad)
	if err == nil || db != nil {
		t.Fatalf("expected error opening %q, got db=%v err=%v", bad, db, err)
	}

	// Be tolerant across platforms/drivers.
	lower := strings.ToLower(err.Error())
	if !(os.IsNotExist(err) ||
		strings.Contains(lower, "unable to open database file") ||
		strings.Contains(lower, "no such file or directory") ||
		strings.Contains(lower, "out of memory")) {
		t.Fatalf("unexpected error opening %q: %v", bad, err)
	}
}

func TestOpen_SQLite_PoolPragmasAndMigrate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vs.db")

	db, err := Open(config.DBConfig{Driver: "sqlite", Path: path, MaxOpenConns: 7})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	var journalMode string
	if err := db.Raw("PRAGMA journal_mode;").Row().Scan(&journalMode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if strings.ToLower(journalMode) != "wal" {
		t.Fatalf("expected journal_mode=wal, got %q", journalMode)
	}

	if stats := sqlDB.Stats(); stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}

	if err := Ping(context.Background(), db); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	m := db.Migrator()
	for _, tbl := range []any{&domain.CallHistory{}, &domain.Contact{}} {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&domain.Contact{}, "ux_contacts_contact_id") {
		t.Fatalf("expected unique index ux_contacts_contact_id")
	}
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(config.DBConfig{Driver: "oracle"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestOpen_MySQL_DoesNotDial(t *testing.T) {
	// Nothing listens on this port; Open must still succeed and Ping must fail.
	db, err := Open(config.DBConfig{
		Driver:       "mysql",
		Host:         "127.0.0.1",
		Port:         1,
		User:         "u",
		Name:         "n",
		MaxOpenConns: 2,
	})
	if err != nil {
		t.Fatalf("Open mysql: %v", err)
	}
	if db.Dialector.Name() != "mysql" {
		t.Fatalf("dialector = %q", db.Dialector.Name())
	}
	if err := Ping(context.Background(), db); err == nil {
		t.Fatalf("expected Ping to fail against a closed port")
	}
}

func TestMySQLDSN(t *testing.T) {
	cfg := config.DBConfig{Host: "db.example.com", Port: 3307, User: "vs", Password: "p@ss", Name: "crm"}

	dsn := MySQLDSN(cfg)
	for _, want := range []string{"vs:p@ss@tcp(db.example.com:3307)/crm", "parseTime=true", "charset=utf8mb4"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q missing %q", dsn, want)
		}
	}
	if strings.Contains(dsn, "tls=") {
		t.Fatalf("dsn %q should not enable TLS", dsn)
	}

	cfg.SSL = true
	if dsn := MySQLDSN(cfg); !strings.Contains(dsn, "tls=skip-verify") {
		t.Fatalf("dsn %q should use tls=skip-verify", dsn)
	}
}

// Compile-time guards to ensure signature stability.
var (
	_ func(string) (*gorm.DB, error)          = OpenSQLite
	_ func(config.DBConfig) (*gorm.DB, error) = Open
)
