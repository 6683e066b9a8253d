package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/leadfunnel-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestLeadsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_leads")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS leads",
		"user_id_promo_code TEXT REFERENCES users(id) ON DELETE SET NULL",
		"'Aguardando Pagamento'",
		"CHECK (cpf IS NOT NULL OR cnpj IS NOT NULL)",
		"DROP TABLE IF EXISTS leads",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestUsersMigrationFloorsBonus(t *testing.T) {
	content := readMigration(t, "create_users")
	for _, sub := range []string{
		"CHECK (bonus_indicacao >= 0)",
		"promo_code VARCHAR(15) UNIQUE",
		"DROP TABLE IF EXISTS users",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCancellationReasonsUniquePerLead(t *testing.T) {
	content := readMigration(t, "create_cancellation_reasons")
	if !strings.Contains(content, "lead_id TEXT NOT NULL UNIQUE") {
		t.Errorf("cancellation reasons must be unique per lead")
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestValidateEmbedded(t *testing.T) {
	require.NoError(t, migrate.ValidateEmbedded())
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Lead Notes")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_lead_notes.sql"))
	require.NoError(t, migrate.ValidateDir(dir))
}

func TestCreateSQLMigrationBumpsVersion(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "29991231235959_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := migrate.CreateSQLMigration(dir, "after future")
	require.NoError(t, err)
	require.Equal(t, "30000101000000_after_future.sql", filepath.Base(path))
	require.NoError(t, migrate.ValidateDir(dir))
}

func TestUpEmbeddedOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_up?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, migrate.UpEmbedded(context.Background(), sqlDB, migrate.Dialect("sqlite")))

	for _, table := range []string{"users", "leads", "cancellation_reasons", "leads_comprovantes", "bonus_redemptions", "payment_groups"} {
		require.True(t, conn.Migrator().HasTable(table), "expected table %s", table)
	}
}

func TestDialect(t *testing.T) {
	require.Equal(t, "sqlite3", migrate.Dialect("sqlite"))
	require.Equal(t, "postgres", migrate.Dialect("postgres"))
	require.Equal(t, "postgres", migrate.Dialect(""))
}
