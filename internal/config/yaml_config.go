package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"ukbol/internal/validation"
)

// Content is the editorial content of the static pages, kept in YAML so it
// can change without a rebuild.
type Content struct {
	PrioritySpecies []PrioritySpecies `yaml:"priority_species"`
	RelatedProjects []RelatedProject  `yaml:"related_projects"`
}

// PrioritySpecies is a species flagged as a barcoding priority.
type PrioritySpecies struct {
	Name       string `yaml:"name"`
	Rank       string `yaml:"rank"` // GBIF rank used for image lookup, default "species"
	CommonName string `yaml:"common_name,omitempty"`
	Group      string `yaml:"group,omitempty"`
	Reason     string `yaml:"reason,omitempty"`
}

// RelatedProject links to a partner project.
type RelatedProject struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	Description string `yaml:"description,omitempty"`
}

// LoadContent loads the YAML content file at path.
// Returns empty content without error if the file doesn't exist.
func LoadContent(path string) (*Content, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Content file is optional
			return &Content{}, nil
		}
		return nil, err
	}

	return ParseContent(data)
}

// ParseContent parses YAML content and applies defaults. Every species needs
// a name and every related project a http(s) URL.
func ParseContent(data []byte) (*Content, error) {
	var content Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return nil, err
	}

	for i, s := range content.PrioritySpecies {
		if s.Name == "" {
			return nil, fmt.Errorf("priority_species[%d]: name is required", i)
		}
	}
	for i, p := range content.RelatedProjects {
		if valid, msg := validation.ValidateURL(p.URL); !valid {
			return nil, fmt.Errorf("related_projects[%d] (%s): %s", i, p.Name, msg)
		}
	}

	for i := range content.PrioritySpecies {
		if content.PrioritySpecies[i].Rank == "" {
			content.PrioritySpecies[i].Rank = "species"
		}
	}

	return &content, nil
}

// SpeciesGroups returns priority species grouped by their Group, preserving
// first-seen group order.
func (c *Content) SpeciesGroups() []SpeciesGroup {
	if c == nil {
		return nil
	}
	var groups []SpeciesGroup
	index := map[string]int{}
	for _, s := range c.PrioritySpecies {
		i, ok := index[s.Group]
		if !ok {
			i = len(groups)
			index[s.Group] = i
			groups = append(groups, SpeciesGroup{Name: s.Group})
		}
		groups[i].Species = append(groups[i].Species, s)
	}
	return groups
}

// SpeciesGroup is a named set of priority species.
type SpeciesGroup struct {
	Name    string
	Species []PrioritySpecies
}
