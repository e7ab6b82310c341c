// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"ukbol/internal/db"
)

// TestDB creates a test database connection and returns a cleanup function.
// Uses TEST_DATABASE_URL; the test is skipped when it is not set.
func TestDB(t *testing.T) (*db.DB, func()) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("Skipping integration test: TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	// Run migrations
	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	cleanupTestData(ctx, database.Pool)
	cleanup := func() {
		// Clean up test data
		cleanupTestData(ctx, database.Pool)
		database.Close()
	}

	return database, cleanup
}

// cleanupTestData removes all test data from the database.
func cleanupTestData(ctx context.Context, pool *pgxpool.Pool) {
	// Delete in order to respect foreign keys
	pool.Exec(ctx, "DELETE FROM taxon_lookups")
	pool.Exec(ctx, "DELETE FROM data_source_status")
	pool.Exec(ctx, "DELETE FROM specimen")
	pool.Exec(ctx, "DELETE FROM synonym")
	pool.Exec(ctx, "UPDATE taxon SET parent_id = NULL")
	pool.Exec(ctx, "DELETE FROM taxon")
}

// CreateTestTaxon inserts a taxon. parentID may be empty for a root.
func CreateTestTaxon(t *testing.T, database *db.DB, id, name, rank, parentID string) {
	t.Helper()
	ctx := context.Background()

	var parent *string
	if parentID != "" {
		parent = &parentID
	}
	_, err := database.Pool.Exec(ctx, `
		INSERT INTO taxon (id, name, rank, parent_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, rank = EXCLUDED.rank, parent_id = EXCLUDED.parent_id
	`, id, name, rank, parent)
	if err != nil {
		t.Fatalf("failed to create test taxon: %v", err)
	}
}

// CreateTestSynonym inserts a synonym of taxonID.
func CreateTestSynonym(t *testing.T, database *db.DB, id, name, rank, taxonID string) {
	t.Helper()
	ctx := context.Background()

	_, err := database.Pool.Exec(ctx, `
		INSERT INTO synonym (id, name, rank, taxon_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`, id, name, rank, taxonID)
	if err != nil {
		t.Fatalf("failed to create test synonym: %v", err)
	}
}

// CreateTestSpecimen inserts a specimen and returns its id. binURI may be
// empty for a specimen without a BIN.
func CreateTestSpecimen(t *testing.T, database *db.DB, processID, identification, binURI string) int64 {
	t.Helper()
	ctx := context.Background()

	var bin *string
	if binURI != "" {
		bin = &binURI
	}
	var id int64
	err := database.Pool.QueryRow(ctx, `
		INSERT INTO specimen (processid, identification, bin_uri)
		VALUES ($1, $2, $3)
		RETURNING id
	`, processID, identification, bin).Scan(&id)
	if err != nil {
		t.Fatalf("failed to create test specimen: %v", err)
	}

	return id
}
