package db

import (
	"context"

	"ukbol/internal/models"
)

// IncrementTaxonLookup upserts a taxon lookup count by outcome.
func (d *DB) IncrementTaxonLookup(ctx context.Context, taxonID, outcome string) error {
	_, err := d.Pool.Exec(ctx, `
		INSERT INTO taxon_lookups (taxon_id, outcome, count, last_seen_at)
		VALUES ($1, $2, 1, NOW())
		ON CONFLICT (taxon_id, outcome) DO UPDATE
		SET count = taxon_lookups.count + 1, last_seen_at = NOW()
	`, taxonID, outcome)
	return err
}

// GetAllTaxonLookups returns all taxon lookup rows for metrics export.
func (d *DB) GetAllTaxonLookups(ctx context.Context) ([]models.TaxonLookup, error) {
	rows, err := d.Pool.Query(ctx, `SELECT taxon_id, outcome, count, last_seen_at FROM taxon_lookups`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lookups []models.TaxonLookup
	for rows.Next() {
		var l models.TaxonLookup
		if err := rows.Scan(&l.TaxonID, &l.Outcome, &l.Count, &l.LastSeenAt); err != nil {
			return nil, err
		}
		lookups = append(lookups, l)
	}
	return lookups, rows.Err()
}
