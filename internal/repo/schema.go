package repo

import (
	"context"
	"sync"
	"sync/atomic"

	"gorm.io/gorm"
)

// SchemaGuard runs AutoMigrate until it succeeds once. The server calls
// Ensure at startup and again whenever the database is used, so tables are
// created as soon as a database that was down at boot becomes reachable.
//
// A nil *SchemaGuard is valid and never migrates (DB_AUTO_MIGRATE=false).
type SchemaGuard struct {
	db   *gorm.DB
	mu   sync.Mutex
	done atomic.Bool
}

// NewSchemaGuard returns a guard that migrates db.
func NewSchemaGuard(db *gorm.DB) *SchemaGuard {
	return &SchemaGuard{db: db}
}

// Ensure migrates the schema if no earlier call succeeded. Concurrent callers
// wait for the in-flight attempt instead of migrating twice.
func (g *SchemaGuard) Ensure(ctx context.Context) error {
	if g == nil || g.done.Load() {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.done.Load() {
		return nil
	}
	if err := AutoMigrate(g.db.WithContext(ctx)); err != nil {
		return err
	}
	g.done.Store(true)
	return nil
}

// Migrated reports whether a migration has succeeded.
func (g *SchemaGuard) Migrated() bool {
	return g != nil && g.done.Load()
}
