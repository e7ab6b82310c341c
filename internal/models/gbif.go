package models

// MatchTypeNone is the GBIF match type reported when nothing matched.
const MatchTypeNone = "NONE"

// GBIFMatch is a GBIF species match record. The rank keys are only present
// when GBIF matched the name down to that rank, so absence is kept distinct
// from zero.
type GBIFMatch struct {
	UsageKey       *int64 `json:"usageKey,omitempty"`
	ScientificName string `json:"scientificName,omitempty"`
	CanonicalName  string `json:"canonicalName,omitempty"`
	Rank           string `json:"rank,omitempty"`
	Status         string `json:"status,omitempty"`
	Confidence     int    `json:"confidence"`
	MatchType      string `json:"matchType"`
	Synonym        bool   `json:"synonym"`

	Kingdom string `json:"kingdom,omitempty"`
	Phylum  string `json:"phylum,omitempty"`
	Class   string `json:"class,omitempty"`
	Order   string `json:"order,omitempty"`
	Family  string `json:"family,omitempty"`
	Genus   string `json:"genus,omitempty"`
	Species string `json:"species,omitempty"`

	KingdomKey *int64 `json:"kingdomKey,omitempty"`
	PhylumKey  *int64 `json:"phylumKey,omitempty"`
	ClassKey   *int64 `json:"classKey,omitempty"`
	OrderKey   *int64 `json:"orderKey,omitempty"`
	FamilyKey  *int64 `json:"familyKey,omitempty"`
	GenusKey   *int64 `json:"genusKey,omitempty"`
	SpeciesKey *int64 `json:"speciesKey,omitempty"`
}

// RankKey pairs a rank with its GBIF key.
type RankKey struct {
	Rank string
	Key  int64
}

// RankKeys returns the keys present on the match, most specific rank first.
func (m *GBIFMatch) RankKeys() []RankKey {
	ordered := []struct {
		rank string
		key  *int64
	}{
		{RankSpecies, m.SpeciesKey},
		{RankGenus, m.GenusKey},
		{RankFamily, m.FamilyKey},
		{RankOrder, m.OrderKey},
		{RankClass, m.ClassKey},
		{RankPhylum, m.PhylumKey},
		{RankKingdom, m.KingdomKey},
	}

	var keys []RankKey
	for _, o := range ordered {
		if o.key != nil {
			keys = append(keys, RankKey{Rank: o.rank, Key: *o.key})
		}
	}
	return keys
}
