package db

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"ukbol/internal/models"
)

// taxonColumns selects a taxon plus its child ids ordered by name.
const taxonColumns = `t.id, t.name, t.authorship, t.rank, t.parent_id,
	ARRAY(SELECT c.id FROM taxon c WHERE c.parent_id = t.id ORDER BY c.name, c.id)`

// scanTaxon scans a row into a Taxon struct.
func scanTaxon(row pgx.Row) (*models.Taxon, error) {
	var taxon models.Taxon
	err := row.Scan(
		&taxon.ID,
		&taxon.Name,
		&taxon.Authorship,
		&taxon.Rank,
		&taxon.Parent,
		&taxon.Children,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTaxonNotFound
	}
	if err != nil {
		return nil, err
	}
	return &taxon, nil
}

// scanTaxa scans multiple rows into a slice of Taxa.
func scanTaxa(rows pgx.Rows) ([]models.Taxon, error) {
	defer rows.Close()

	taxa := []models.Taxon{}
	for rows.Next() {
		var taxon models.Taxon
		if err := rows.Scan(
			&taxon.ID,
			&taxon.Name,
			&taxon.Authorship,
			&taxon.Rank,
			&taxon.Parent,
			&taxon.Children,
		); err != nil {
			return nil, err
		}
		taxa = append(taxa, taxon)
	}

	return taxa, rows.Err()
}

// attachSynonyms loads the synonyms of every taxon in one query.
func (d *DB) attachSynonyms(ctx context.Context, taxa []models.Taxon) error {
	if len(taxa) == 0 {
		return nil
	}

	ids := make([]string, len(taxa))
	index := make(map[string]int, len(taxa))
	for i := range taxa {
		ids[i] = taxa[i].ID
		index[taxa[i].ID] = i
		taxa[i].Synonyms = []models.Synonym{}
	}

	rows, err := d.Pool.Query(ctx, `
		SELECT id, name, authorship, rank, taxon_id
		FROM synonym
		WHERE taxon_id = ANY($1)
		ORDER BY name, id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var s models.Synonym
		if err := rows.Scan(&s.ID, &s.Name, &s.Authorship, &s.Rank, &s.Taxon); err != nil {
			return err
		}
		i := index[s.Taxon]
		taxa[i].Synonyms = append(taxa[i].Synonyms, s)
	}
	return rows.Err()
}

// GetTaxon retrieves a taxon with its children and synonyms.
func (d *DB) GetTaxon(ctx context.Context, id string) (*models.Taxon, error) {
	taxon, err := scanTaxon(d.Pool.QueryRow(ctx, `SELECT `+taxonColumns+` FROM taxon t WHERE t.id = $1`, id))
	if err != nil {
		return nil, err
	}

	one := []models.Taxon{*taxon}
	if err := d.attachSynonyms(ctx, one); err != nil {
		return nil, err
	}
	return &one[0], nil
}

// GetRoots retrieves the taxa without a parent, ordered by name.
func (d *DB) GetRoots(ctx context.Context) ([]models.Taxon, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+taxonColumns+`
		FROM taxon t
		WHERE t.parent_id IS NULL
		ORDER BY t.name, t.id
	`)
	if err != nil {
		return nil, err
	}
	taxa, err := scanTaxa(rows)
	if err != nil {
		return nil, err
	}
	return taxa, d.attachSynonyms(ctx, taxa)
}

// GetChildren retrieves the direct children of a taxon, ordered by name.
func (d *DB) GetChildren(ctx context.Context, id string) ([]models.Taxon, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+taxonColumns+`
		FROM taxon t
		WHERE t.parent_id = $1
		ORDER BY t.name, t.id
	`, id)
	if err != nil {
		return nil, err
	}
	taxa, err := scanTaxa(rows)
	if err != nil {
		return nil, err
	}
	return taxa, d.attachSynonyms(ctx, taxa)
}

// GetParentIDs returns the ids of a taxon's ancestors, immediate parent
// first. The taxon itself is not included; a root yields an empty slice.
func (d *DB) GetParentIDs(ctx context.Context, id string) ([]string, error) {
	rows, err := d.Pool.Query(ctx, `
		WITH RECURSIVE ancestors (id, parent_id, depth) AS (
			SELECT id, parent_id, 0 FROM taxon WHERE id = $1
			UNION ALL
			SELECT t.id, t.parent_id, a.depth + 1
			FROM taxon t
			JOIN ancestors a ON t.id = a.parent_id
		)
		SELECT id FROM ancestors WHERE depth > 0 ORDER BY depth
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parents := []string{}
	for rows.Next() {
		var parentID string
		if err := rows.Scan(&parentID); err != nil {
			return nil, err
		}
		parents = append(parents, parentID)
	}
	return parents, rows.Err()
}

// SuggestTaxa returns up to limit taxa whose name starts with query,
// case-insensitively, shortest names first.
func (d *DB) SuggestTaxa(ctx context.Context, query string, limit int) ([]models.Taxon, error) {
	rows, err := d.Pool.Query(ctx, `
		SELECT `+taxonColumns+`
		FROM taxon t
		WHERE lower(t.name) LIKE lower($1) || '%'
		ORDER BY length(t.name), t.name, t.id
		LIMIT $2
	`, escapeLike(query), limit)
	if err != nil {
		return nil, err
	}
	taxa, err := scanTaxa(rows)
	if err != nil {
		return nil, err
	}
	return taxa, d.attachSynonyms(ctx, taxa)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
