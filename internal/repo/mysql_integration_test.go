//go:build integration

package repo

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/datatypes"

	"github.com/collin-ho/vs-mysql/internal/config"
	"github.com/collin-ho/vs-mysql/internal/domain"
)

// startMySQL runs a throwaway MySQL 8 container and returns a migrated handle
// opened through the production code path.
func startMySQL(t *testing.T) config.DBConfig {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("vanillasoft"),
		tcmysql.WithUsername("vs"),
		tcmysql.WithPassword("vs"),
	)
	if err != nil {
		t.Fatalf("start mysql container: %v", err)
	}
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	host, err := ctr.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := ctr.MappedPort(ctx, "3306/tcp")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}
	p, _ := strconv.Atoi(port.Port())

	return config.DBConfig{
		Driver:       "mysql",
		Host:         host,
		Port:         p,
		User:         "vs",
		Password:     "vs",
		Name:         "vanillasoft",
		MaxOpenConns: 10,
	}
}

func TestMySQL_InsertIgnoreAndConcurrency(t *testing.T) {
	cfg := startMySQL(t)
	ctx := context.Background()

	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Ping(ctx, db); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	if err := InsertCallHistory(ctx, db, &domain.CallHistory{ContactID: strp("C1")}); err != nil {
		t.Fatalf("InsertCallHistory: %v", err)
	}

	c := &domain.Contact{ContactID: strp("C100"), NumberOfEmployees: datatypes.JSON(`[50]`)}
	if n, err := InsertContactIfAbsent(ctx, db, c); err != nil || n != 1 {
		t.Fatalf("first insert: n=%d err=%v", n, err)
	}
	if n, err := InsertContactIfAbsent(ctx, db, &domain.Contact{ContactID: strp("C100")}); err != nil || n != 0 {
		t.Fatalf("duplicate insert: n=%d err=%v", n, err)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		inserted int64
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := InsertContactIfAbsent(ctx, db, &domain.Contact{ContactID: strp("RACE")})
			if err != nil {
				t.Errorf("concurrent insert: %v", err)
				return
			}
			mu.Lock()
			inserted += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	if inserted != 1 {
		t.Fatalf("exactly one concurrent writer should insert, got %d", inserted)
	}

	var got domain.Contact
	if err := db.First(&got, "contact_id = ?", "C100").Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(got.NumberOfEmployees) != "[50]" {
		t.Fatalf("number_of_employees = %s", got.NumberOfEmployees)
	}
}
