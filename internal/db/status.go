package db

import (
	"context"

	"ukbol/internal/models"
)

// GetDataSourceStatuses returns the import status of every data source,
// ordered by name.
func (d *DB) GetDataSourceStatuses(ctx context.Context) ([]models.DataSourceStatus, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT name, updated_at, version, total
		FROM data_source_status
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	statuses := []models.DataSourceStatus{}
	for rows.Next() {
		var s models.DataSourceStatus
		if err := rows.Scan(&s.Name, &s.UpdatedAt, &s.Version, &s.Total); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	return statuses, rows.Err()
}
