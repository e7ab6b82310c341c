package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ptr[T any](v T) *T {
	return &v
}

func TestTaxon_IsRoot(t *testing.T) {
	tests := []struct {
		name     string
		parent   *string
		expected bool
	}{
		{"nil parent", nil, true},
		{"empty parent", ptr(""), true},
		{"has parent", ptr("NHMSYS0021048735"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taxon := &Taxon{Parent: tt.parent}
			if got := taxon.IsRoot(); got != tt.expected {
				t.Errorf("IsRoot() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTaxon_Names(t *testing.T) {
	taxon := &Taxon{
		Name: "Bombus terrestris",
		Synonyms: []Synonym{
			{Name: "Apis terrestris"},
			{Name: "Bombus terrestris"},
			{Name: "Bremus terrestris"},
			{Name: "Apis terrestris"},
		},
	}

	want := []string{"Bombus terrestris", "Apis terrestris", "Bremus terrestris"}
	if diff := cmp.Diff(want, taxon.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestGBIFMatch_RankKeys(t *testing.T) {
	tests := []struct {
		name  string
		match GBIFMatch
		want  []RankKey
	}{
		{
			name:  "no keys",
			match: GBIFMatch{MatchType: "HIGHERRANK"},
			want:  nil,
		},
		{
			name:  "genus and kingdom only",
			match: GBIFMatch{GenusKey: ptr(int64(42)), KingdomKey: ptr(int64(1))},
			want:  []RankKey{{RankGenus, 42}, {RankKingdom, 1}},
		},
		{
			name: "full lineage",
			match: GBIFMatch{
				KingdomKey: ptr(int64(1)),
				PhylumKey:  ptr(int64(54)),
				ClassKey:   ptr(int64(216)),
				OrderKey:   ptr(int64(1457)),
				FamilyKey:  ptr(int64(4334)),
				GenusKey:   ptr(int64(1340278)),
				SpeciesKey: ptr(int64(1340503)),
			},
			want: []RankKey{
				{RankSpecies, 1340503},
				{RankGenus, 1340278},
				{RankFamily, 4334},
				{RankOrder, 1457},
				{RankClass, 216},
				{RankPhylum, 54},
				{RankKingdom, 1},
			},
		},
		{
			name:  "zero key is still present",
			match: GBIFMatch{FamilyKey: ptr(int64(0))},
			want:  []RankKey{{RankFamily, 0}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.match.RankKeys()); diff != "" {
				t.Errorf("RankKeys() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
