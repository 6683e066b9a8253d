// Package dbtest opens throwaway sqlite databases carrying the production
// schema for repository and service tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/db"
	"github.com/angelmondragon/leadfunnel-backend/pkg/migrate"
)

// Open returns an isolated in-memory database with every migration applied.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		NowFunc:                func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := migrate.UpEmbedded(context.Background(), sqlDB, "sqlite3"); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return conn
}

// Client wraps Open in the transaction-capable client the services expect.
func Client(t testing.TB) *db.Client {
	t.Helper()
	return db.Open(Open(t))
}
