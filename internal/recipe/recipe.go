// Package recipe loads and validates the declarative build recipe of a module.
package recipe

import (
	"fmt"
	"os"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the recipe filename looked up in the module source tree.
const DefaultFile = "modpack.yaml"

// Options is the module-level build configuration. It is fixed before
// dependency resolution and never mutated afterward.
type Options struct {
	Shared bool
}

// DefaultOptions returns the default build configuration: shared linkage.
func DefaultOptions() Options {
	return Options{Shared: true}
}

// Requirement is a direct third-party dependency with an exact version pin.
// Declaration order is the resolution order.
type Requirement struct {
	Name    string
	Version string
}

// LockEntry describes one resolved dependency in the recipe's resolution
// table: its pinned version, its own default linkage, and the names of its
// direct requirements. The table carries the full transitive closure.
type LockEntry struct {
	Version  string
	Shared   bool
	Requires []string
}

// Recipe is the parsed modpack.yaml.
type Recipe struct {
	Name       string
	License    string
	URL        string
	Entrypoint string
	Profile    string
	Options    Options
	Requires   []Requirement
	Resolution map[string]LockEntry
}

type requirementFile struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type lockEntryFile struct {
	Version  string   `yaml:"version"`
	Shared   *bool    `yaml:"shared"`
	Requires []string `yaml:"requires"`
}

type recipeFile struct {
	Name       string `yaml:"name"`
	License    string `yaml:"license"`
	URL        string `yaml:"url"`
	Entrypoint string `yaml:"entrypoint"`
	Profile    string `yaml:"profile"`
	Options    struct {
		Shared *bool `yaml:"shared"`
	} `yaml:"options"`
	Requires   []requirementFile        `yaml:"requires"`
	Resolution map[string]lockEntryFile `yaml:"resolution"`
}

// Load reads and validates a recipe file from path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates recipe data.
func Parse(data []byte) (*Recipe, error) {
	var f recipeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}

	r := &Recipe{
		Name:       f.Name,
		License:    f.License,
		URL:        f.URL,
		Entrypoint: f.Entrypoint,
		Profile:    f.Profile,
		Options:    DefaultOptions(),
	}
	if f.Options.Shared != nil {
		r.Options.Shared = *f.Options.Shared
	}
	for _, req := range f.Requires {
		r.Requires = append(r.Requires, Requirement{Name: req.Name, Version: req.Version})
	}
	if len(f.Resolution) > 0 {
		r.Resolution = make(map[string]LockEntry, len(f.Resolution))
		for name, entry := range f.Resolution {
			locked := LockEntry{
				Version:  entry.Version,
				Shared:   true,
				Requires: entry.Requires,
			}
			if entry.Shared != nil {
				locked.Shared = *entry.Shared
			}
			r.Resolution[name] = locked
		}
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Recipe) validate() error {
	if r.Name == "" {
		return fmt.Errorf("recipe: name is required")
	}
	if r.Entrypoint == "" {
		return fmt.Errorf("recipe: entrypoint is required")
	}

	seen := make(map[string]bool, len(r.Requires))
	for _, req := range r.Requires {
		if req.Name == "" {
			return fmt.Errorf("recipe: requirement with empty name")
		}
		if seen[req.Name] {
			return fmt.Errorf("recipe: duplicate requirement %q", req.Name)
		}
		seen[req.Name] = true
		if !validVersion(req.Version) {
			return fmt.Errorf("recipe: requirement %s has invalid version %q", req.Name, req.Version)
		}
	}

	for name, entry := range r.Resolution {
		if !validVersion(entry.Version) {
			return fmt.Errorf("recipe: resolution entry %s has invalid version %q", name, entry.Version)
		}
	}
	return nil
}

// validVersion reports whether v is an exact semantic version pin.
// Recipes write versions without the "v" prefix, matching upstream tags.
func validVersion(v string) bool {
	return v != "" && semver.IsValid("v"+v)
}
