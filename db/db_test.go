package db

import (
	"context"
	"database/sql"
	"os"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_PG_DSN")
	if dsn == "" {
		t.Skip("TEST_PG_DSN not set")
	}
	database, err := Connect(dsn)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestMigrateIdempotent(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("first Migrate() error: %v", err)
	}
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("second Migrate() error: %v", err)
	}

	for _, table := range []string{"streams", "game_features", "stream_progress"} {
		var n int
		if err := database.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
			t.Errorf("table %s not queryable after migrate: %v", table, err)
		}
	}
}

func TestMigrateRoundTrip(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	if err := Migrate(ctx, database); err != nil {
		t.Fatalf("Migrate() error: %v", err)
	}

	var id int64
	if err := database.QueryRow(
		`INSERT INTO streams (filename, ts, duration) VALUES ($1, $2, $3) RETURNING id`,
		"2024-02-02 12:00:00.mkv", int64(1706875200), 1800.0,
	).Scan(&id); err != nil {
		t.Fatalf("insert stream: %v", err)
	}
	t.Cleanup(func() {
		_, _ = database.Exec(`DELETE FROM streams WHERE id = $1`, id)
	})

	if _, err := database.Exec(
		`INSERT INTO game_features (stream_id, game_id, start_time) VALUES ($1, 7, 42.5)`, id,
	); err != nil {
		t.Fatalf("insert marker: %v", err)
	}

	var start float64
	if err := database.QueryRow(
		`SELECT start_time FROM game_features WHERE stream_id = $1`, id,
	).Scan(&start); err != nil {
		t.Fatalf("query marker: %v", err)
	}
	if start != 42.5 {
		t.Errorf("start_time = %v, want 42.5", start)
	}
}

func TestRunMigrationsFromPathInvalid(t *testing.T) {
	database := openTestDB(t)
	if err := RunMigrationsFromPath(database, "file:///nonexistent/migrations"); err == nil {
		t.Error("expected error for nonexistent migrations path")
	}
}
