package models

// Rank constants for the ranks the explorer links out to GBIF with.
const (
	RankKingdom = "kingdom"
	RankPhylum  = "phylum"
	RankClass   = "class"
	RankOrder   = "order"
	RankFamily  = "family"
	RankGenus   = "genus"
	RankSpecies = "species"
)

// Taxon is a node in the taxonomy tree.
type Taxon struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Authorship *string   `json:"authorship"`
	Rank       string    `json:"rank"`
	Parent     *string   `json:"parent"`
	Children   []string  `json:"children"`
	Synonyms   []Synonym `json:"synonyms"`
}

// Synonym is an alternative name for a taxon.
type Synonym struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Authorship *string `json:"authorship"`
	Rank       string  `json:"rank"`
	Taxon      string  `json:"taxon"`
}

// IsRoot returns true if the taxon has no parent.
func (t *Taxon) IsRoot() bool {
	return t.Parent == nil || *t.Parent == ""
}

// Names returns the accepted name followed by every synonym name, without
// duplicates.
func (t *Taxon) Names() []string {
	seen := map[string]bool{t.Name: true}
	names := []string{t.Name}
	for _, s := range t.Synonyms {
		if seen[s.Name] {
			continue
		}
		seen[s.Name] = true
		names = append(names, s.Name)
	}
	return names
}
