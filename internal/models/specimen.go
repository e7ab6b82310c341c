package models

import "strconv"

// Specimen is a BOLD specimen record.
type Specimen struct {
	ID                  int64   `json:"id"`
	ProcessID           *string `json:"processid"`
	SampleID            *string `json:"sampleid"`
	BINURI              *string `json:"bin_uri"`
	Identification      *string `json:"identification"`
	IdentificationRank  *string `json:"identification_rank"`
	Kingdom             *string `json:"kingdom"`
	Phylum              *string `json:"phylum"`
	Class               *string `json:"cls"`
	Order               *string `json:"order"`
	Family              *string `json:"family"`
	Subfamily           *string `json:"subfamily"`
	Genus               *string `json:"genus"`
	Species             *string `json:"species"`
	Subspecies          *string `json:"subspecies"`
	CountryOcean        *string `json:"country_ocean"`
	CountryISO          *string `json:"country_iso"`
	Institution         *string `json:"inst"`
	CollectionDateStart *string `json:"collection_date_start"`
}

// SpecimenPage is one page of specimens plus the total matching count.
type SpecimenPage struct {
	Count     int64      `json:"count"`
	Specimens []Specimen `json:"specimens"`
}

// CSVHeader is the column order used when exporting specimens.
var CSVHeader = []string{
	"id", "processid", "sampleid", "bin_uri", "identification", "identification_rank",
	"kingdom", "phylum", "class", "order", "family", "subfamily", "genus", "species",
	"subspecies", "country_ocean", "country_iso", "inst", "collection_date_start",
}

// CSVRecord returns the specimen as a row matching CSVHeader. Missing values
// are written as empty cells.
func (s *Specimen) CSVRecord() []string {
	deref := func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	}
	return []string{
		strconv.FormatInt(s.ID, 10),
		deref(s.ProcessID),
		deref(s.SampleID),
		deref(s.BINURI),
		deref(s.Identification),
		deref(s.IdentificationRank),
		deref(s.Kingdom),
		deref(s.Phylum),
		deref(s.Class),
		deref(s.Order),
		deref(s.Family),
		deref(s.Subfamily),
		deref(s.Genus),
		deref(s.Species),
		deref(s.Subspecies),
		deref(s.CountryOcean),
		deref(s.CountryISO),
		deref(s.Institution),
		deref(s.CollectionDateStart),
	}
}
