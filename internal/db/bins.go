package db

import (
	"context"

	"ukbol/internal/models"
)

// containingBinsQuery selects the distinct BIN URIs of specimens identified
// with any of the names in $1. Specimens without a BIN are ignored.
const containingBinsQuery = `
	SELECT DISTINCT bin_uri
	FROM specimen
	WHERE identification = ANY($1) AND bin_uri IS NOT NULL`

// GetBinsForNames summarises every BIN that contains a specimen identified
// with one of names: its specimen count and the distinct identifications
// found in it. Results are ordered by BIN URI.
func (d *DB) GetBinsForNames(ctx context.Context, names []string) ([]models.Bin, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT bin_uri,
			COUNT(*),
			COALESCE(
				ARRAY_AGG(DISTINCT identification ORDER BY identification)
					FILTER (WHERE identification IS NOT NULL),
				'{}'
			)
		FROM specimen
		WHERE bin_uri IN (`+containingBinsQuery+`)
		GROUP BY bin_uri
		ORDER BY bin_uri
	`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bins := []models.Bin{}
	for rows.Next() {
		var b models.Bin
		if err := rows.Scan(&b.URI, &b.Specimens, &b.Names); err != nil {
			return nil, err
		}
		bins = append(bins, b)
	}
	return bins, rows.Err()
}
