package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"ukbol/internal/models"
)

// specimenColumns is the standard column list for specimen queries.
const specimenColumns = `id, processid, sampleid, bin_uri, identification, identification_rank,
	kingdom, phylum, cls, "order", family, subfamily, genus, species, subspecies,
	country_ocean, country_iso, inst, collection_date_start`

func scanSpecimenRow(row pgx.Row, s *models.Specimen) error {
	return row.Scan(
		&s.ID,
		&s.ProcessID,
		&s.SampleID,
		&s.BINURI,
		&s.Identification,
		&s.IdentificationRank,
		&s.Kingdom,
		&s.Phylum,
		&s.Class,
		&s.Order,
		&s.Family,
		&s.Subfamily,
		&s.Genus,
		&s.Species,
		&s.Subspecies,
		&s.CountryOcean,
		&s.CountryISO,
		&s.Institution,
		&s.CollectionDateStart,
	)
}

// GetSpecimensByNames returns one page of specimens identified with any of
// names, ordered by identification then id, plus the total match count.
func (d *DB) GetSpecimensByNames(ctx context.Context, names []string, page, perPage int) (*models.SpecimenPage, error) {
	result := &models.SpecimenPage{Specimens: []models.Specimen{}}

	err := d.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM specimen WHERE identification = ANY($1)
	`, names).Scan(&result.Count)
	if err != nil {
		return nil, err
	}
	if result.Count == 0 {
		return result, nil
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT `+specimenColumns+`
		FROM specimen
		WHERE identification = ANY($1)
		ORDER BY identification, id
		LIMIT $2 OFFSET $3
	`, names, perPage, (page-1)*perPage)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Specimen
		if err := scanSpecimenRow(rows, &s); err != nil {
			return nil, err
		}
		result.Specimens = append(result.Specimens, s)
	}
	return result, rows.Err()
}

// EachAssociatedSpecimen calls fn for every specimen in the BINs that contain
// a specimen identified with one of names, in BIN URI order. Iteration stops
// at the first error fn returns.
func (d *DB) EachAssociatedSpecimen(ctx context.Context, names []string, fn func(*models.Specimen) error) error {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+specimenColumns+`
		FROM specimen
		WHERE bin_uri IN (`+containingBinsQuery+`)
		ORDER BY bin_uri, id
	`, names)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Specimen
		if err := scanSpecimenRow(rows, &s); err != nil {
			return err
		}
		if err := fn(&s); err != nil {
			return err
		}
	}
	return rows.Err()
}
