package db

import (
	"context"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"

	"ukbol/migrations"
)

// DB wraps a pgxpool connection pool.
type DB struct {
	Pool *pgxpool.Pool
}

// New creates a new database connection pool.
func New(ctx context.Context, connString string) (*DB, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{Pool: pool}, nil
}

// RunMigrations runs all embedded SQL migrations.
func (d *DB) RunMigrations(connString string) error {
	return RunMigrations(connString)
}

// RunMigrations applies the embedded migrations to the database at
// connString without needing an open pool.
func RunMigrations(connString string) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, connString)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Ping checks the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.Pool.Ping(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() {
	d.Pool.Close()
}

// SeedDevTaxa inserts a small taxonomy for development. Skips rows that
// already exist.
func (d *DB) SeedDevTaxa(ctx context.Context) error {
	taxa := []struct {
		id     string
		name   string
		rank   string
		parent *string
	}{
		{"NHMSYS0021048735", "Biota", "Unranked", nil},
		{"NBNSYS0100003095", "Animalia", "Kingdom", ptr("NHMSYS0021048735")},
		{"NHMSYS0020535450", "Arthropoda", "Phylum", ptr("NBNSYS0100003095")},
		{"NHMSYS0020535046", "Insecta", "Class", ptr("NHMSYS0020535450")},
		{"NHMSYS0020535847", "Hymenoptera", "Order", ptr("NHMSYS0020535046")},
		{"BMSSYS0000042047", "Apidae", "Family", ptr("NHMSYS0020535847")},
		{"NHMSYS0001472727", "Bombus", "Genus", ptr("BMSSYS0000042047")},
		{"BMSSYS0000000001", "Bombus terrestris", "Species", ptr("NHMSYS0001472727")},
	}

	query := `
		INSERT INTO taxon (id, name, rank, parent_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	for _, t := range taxa {
		if _, err := d.Pool.Exec(ctx, query, t.id, t.name, t.rank, t.parent); err != nil {
			return fmt.Errorf("failed to seed taxon %s: %w", t.id, err)
		}
	}

	return nil
}

func ptr(s string) *string {
	return &s
}
