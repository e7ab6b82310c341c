package models

import "time"

// Taxon lookup outcome constants
const (
	OutcomeFound    = "found"
	OutcomeNotFound = "not_found"
)

// TaxonLookup represents a per-taxon view count by outcome.
type TaxonLookup struct {
	TaxonID    string
	Outcome    string
	Count      int64
	LastSeenAt time.Time
}
