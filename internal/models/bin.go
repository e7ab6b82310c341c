package models

// Bin is a Barcode Index Number cluster that contains specimens identified
// with one of a taxon's names.
type Bin struct {
	URI       string   `json:"bin"`
	Specimens int64    `json:"specimens"`
	Names     []string `json:"names"`
}
