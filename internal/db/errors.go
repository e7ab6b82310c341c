package db

import "errors"

// Domain-level database error sentinels.
var (
	// Taxon errors
	ErrTaxonNotFound = errors.New("taxon not found")
)
