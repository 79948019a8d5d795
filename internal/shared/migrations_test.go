package shared

import (
	"database/sql"
	"testing"
)

func migrationTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Every pooled connection to :memory: would get its own database.
	ConfigureDatabase(db, 1, 1)
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check table %s: %v", name, err)
	}
	return count > 0
}

func TestRunMigrations(t *testing.T) {
	t.Run("Creates Schema", func(t *testing.T) {
		db := migrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("expected migrations to apply, got %v", err)
		}
		for _, table := range []string{"schema_migrations", "sync_runs", "sync_runs_sequence"} {
			if !tableExists(t, db, table) {
				t.Errorf("expected table %s", table)
			}
		}

		// The sequence table is seeded so NextSequence can update row 1.
		var value int
		if err := db.QueryRow("SELECT value FROM sync_runs_sequence WHERE id = 1").Scan(&value); err != nil {
			t.Fatalf("expected seeded sequence row: %v", err)
		}
		if value != 0 {
			t.Errorf("expected initial sequence 0, got %d", value)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		db := migrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := RunMigrations(db); err != nil {
			t.Fatalf("second run must be a no-op, got %v", err)
		}

		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
			t.Fatalf("failed to count applied migrations: %v", err)
		}
		if applied != 1 {
			t.Errorf("expected 1 applied migration, got %d", applied)
		}
	})
}

func TestRollbackMigration(t *testing.T) {
	t.Run("Drops Schema", func(t *testing.T) {
		db := migrationTestDB(t)

		if err := RunMigrations(db); err != nil {
			t.Fatalf("migrations failed: %v", err)
		}
		if err := RollbackMigration(db); err != nil {
			t.Fatalf("expected rollback to succeed, got %v", err)
		}
		if tableExists(t, db, "sync_runs") {
			t.Error("expected sync_runs dropped")
		}

		var applied int
		if err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
			t.Fatalf("failed to count applied migrations: %v", err)
		}
		if applied != 0 {
			t.Errorf("expected no applied migrations after rollback, got %d", applied)
		}
	})

	t.Run("Nothing To Rollback", func(t *testing.T) {
		db := migrationTestDB(t)

		if err := createMigrationsTable(db); err != nil {
			t.Fatalf("failed to create migrations table: %v", err)
		}
		if err := RollbackMigration(db); err == nil {
			t.Error("expected error with no applied migrations")
		}
	})
}

func TestStripComments(t *testing.T) {
	in := "-- leading comment\nCREATE TABLE t (\n  id TEXT -- trailing\n);"
	out := stripComments(in)
	if out != "CREATE TABLE t (\nid TEXT\n);" {
		t.Errorf("unexpected output %q", out)
	}
}
