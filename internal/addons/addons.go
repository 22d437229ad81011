// Package addons holds the static descriptors of third-party operator
// deployments offered to applications. Pure data: templates are embedded at
// build time, parsed once, and served read-only.
package addons

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

//go:embed templates/*.json
var templateFS embed.FS

// FormField describes a single operator-template input.
type FormField struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	Name        string `json:"name"`
	Required    bool   `json:"required"`
	Default     any    `json:"default,omitempty"`
	Description string `json:"description,omitempty"`
}

// Addon describes one deployable operator template.
type Addon struct {
	ID          string               `json:"id"`
	Operator    string               `json:"operator"`
	Enabled     bool                 `json:"enabled"`
	Name        string               `json:"name"`
	Icon        string               `json:"icon"`
	Plural      string               `json:"plural"`
	Version     string               `json:"version"`
	Description string               `json:"description"`
	FormFields  map[string]FormField `json:"formfields"`
	CRD         map[string]any       `json:"crd"`
}

// Load parses every embedded template, sorted by id.
func Load() ([]Addon, error) {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read addon templates: %w", err)
	}

	addons := make([]Addon, 0, len(entries))
	for _, entry := range entries {
		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read addon template %s: %w", entry.Name(), err)
		}

		var addon Addon
		if err := json.Unmarshal(data, &addon); err != nil {
			return nil, fmt.Errorf("failed to parse addon template %s: %w", entry.Name(), err)
		}
		addons = append(addons, addon)
	}

	sort.Slice(addons, func(i, j int) bool {
		return addons[i].ID < addons[j].ID
	})
	return addons, nil
}
