package repo

import (
	"context"
	"sync"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/collin-ho/vs-mysql/internal/domain"
)

func TestSchemaGuard_NilIsNoop(t *testing.T) {
	var g *SchemaGuard
	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("nil guard Ensure: %v", err)
	}
	if g.Migrated() {
		t.Fatalf("nil guard must not report migrated")
	}
}

func TestSchemaGuard_RetriesUntilDatabaseIsBack(t *testing.T) {
	down, err := gorm.Open(sqlite.Open("file:schema_guard_down?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDown, _ := down.DB()
	_ = sqlDown.Close()

	g := NewSchemaGuard(down)
	if err := g.Ensure(context.Background()); err == nil {
		t.Fatalf("expected migration error while the database is down")
	}
	if g.Migrated() {
		t.Fatalf("failed migration must not mark the guard done")
	}

	// The database comes back.
	db := newWebhookDB(t, "schema_guard_up", false)
	g.db = db
	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if !g.Migrated() {
		t.Fatalf("guard should report migrated")
	}
	for _, m := range []any{&domain.CallHistory{}, &domain.Contact{}} {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("table for %T missing after Ensure", m)
		}
	}

	// Later calls do not migrate again.
	if err := db.Migrator().DropTable(&domain.Contact{}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if err := g.Ensure(context.Background()); err != nil {
		t.Fatalf("second Ensure: %v", err)
	}
	if db.Migrator().HasTable(&domain.Contact{}) {
		t.Fatalf("second Ensure should not migrate again")
	}
}

func TestSchemaGuard_ConcurrentEnsure(t *testing.T) {
	db := newWebhookDB(t, "schema_guard_concurrent", false)
	g := NewSchemaGuard(db)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- g.Ensure(context.Background())
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Ensure: %v", err)
		}
	}
	if !db.Migrator().HasTable(&domain.Contact{}) {
		t.Fatalf("contacts table missing")
	}
}
