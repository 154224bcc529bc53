package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestEmbeddedMigrationsAreConsistent(t *testing.T) {
	require.NoError(t, Validate(Embedded(), "migrations"))
}

func TestValidateRejectsMismatchedDrivers(t *testing.T) {
	up := []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")
	fsys := fstest.MapFS{
		"m/postgres/20260101000000_one.sql": {Data: up},
		"m/postgres/20260102000000_two.sql": {Data: up},
		"m/sqlite/20260101000000_one.sql":   {Data: up},
	}
	require.ErrorContains(t, Validate(fsys, "m"), "differ")

	fsys["m/sqlite/20260102000000_two.sql"] = &fstest.MapFile{Data: []byte("SELECT 1;")}
	require.ErrorContains(t, Validate(fsys, "m"), "goose Up")

	fsys["m/sqlite/20260102000000_two.sql"] = &fstest.MapFile{Data: up}
	require.NoError(t, Validate(fsys, "m"))

	fsys["m/sqlite/bad-name.sql"] = &fstest.MapFile{Data: up}
	require.ErrorContains(t, Validate(fsys, "m"), "invalid migration filename")
}

func TestRunAppliesSQLiteSchema(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	defer func() { _ = sqlDB.Close() }()

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, "sqlite", "up"))

	for _, table := range []string{"categories", "products", "discount_rules"} {
		require.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}

	require.NoError(t, MigrateToVersion(ctx, sqlDB, "sqlite", "20260301120000"))
	require.False(t, conn.Migrator().HasTable("discount_rules"))
	require.True(t, conn.Migrator().HasTable("products"))
}

func TestDirRejectsUnknownDriver(t *testing.T) {
	_, err := Dir("mysql")
	require.Error(t, err)
	dir, err := Dir("postgres")
	require.NoError(t, err)
	require.Equal(t, "migrations/postgres", dir)
}

func TestCreateSQLMigrationWritesEveryDriver(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2026, 5, 4, 3, 2, 1, 0, time.UTC)

	paths, err := CreateSQLMigration(root, "Add Product Tags!", now)
	require.NoError(t, err)
	require.Equal(t, []string{
		filepath.Join(root, "postgres", "20260504030201_add_product_tags.sql"),
		filepath.Join(root, "sqlite", "20260504030201_add_product_tags.sql"),
	}, paths)
	require.NoError(t, Validate(os.DirFS(root), "."))

	_, err = CreateSQLMigration(root, "Add Product Tags!", now)
	require.ErrorContains(t, err, "already exists")

	_, err = CreateSQLMigration(root, "!!!", now)
	require.Error(t, err)
}
