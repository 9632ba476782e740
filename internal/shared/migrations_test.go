package shared

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func TestMigrationRunner(t *testing.T) {
	openDB := func(t *testing.T) *sql.DB {
		t.Helper()
		db, err := sql.Open("sqlite3", ":memory:")
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		return db
	}

	tableExists := func(t *testing.T, db *sql.DB, name string) bool {
		t.Helper()
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
		if err != nil {
			t.Fatalf("failed to query sqlite_master: %v", err)
		}
		return count == 1
	}

	t.Run("loadMigrations", func(t *testing.T) {
		migrations, err := loadMigrations()
		if err != nil {
			t.Fatalf("failed to load migrations: %v", err)
		}

		if len(migrations) == 0 {
			t.Fatal("expected at least one migration")
		}

		for i, migration := range migrations {
			if migration.Up == "" || migration.Down == "" {
				t.Errorf("migration %d is incomplete", migration.Version)
			}
			if i > 0 && migrations[i-1].Version >= migration.Version {
				t.Errorf("migrations not sorted: %d before %d", migrations[i-1].Version, migration.Version)
			}
		}
	})

	t.Run("RunMigrations and Rollback", func(t *testing.T) {
		db := openDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}

		if !tableExists(t, db, "tags") {
			t.Error("expected tags table after migrations")
		}
		if !tableExists(t, db, "tags_sequence") {
			t.Error("expected tags_sequence table after migrations")
		}

		var seeded int
		if err := db.QueryRow("SELECT COUNT(*) FROM tags_sequence").Scan(&seeded); err != nil {
			t.Fatalf("failed to read sequence table: %v", err)
		}
		if seeded != 1 {
			t.Errorf("expected seeded sequence row, got %d rows", seeded)
		}

		if err := RollbackMigration(db); err != nil {
			t.Fatalf("failed to rollback migration: %v", err)
		}

		if tableExists(t, db, "tags") {
			t.Error("expected tags table removed after rollback")
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		db := openDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("failed to run migrations: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second migration run should be a no-op: %v", err)
		}

		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
			t.Fatalf("failed to count applied migrations: %v", err)
		}
		if applied != 1 {
			t.Errorf("expected 1 applied migration, got %d", applied)
		}
	})

	t.Run("Rollback Without Migrations", func(t *testing.T) {
		db := openDB(t)

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}

		if err := RollbackMigration(db); err == nil {
			t.Error("expected error rolling back with no applied migrations")
		}
	})
}
