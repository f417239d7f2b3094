// Package meta parses the meta.json descriptor that the module runtime reads
// from a deployed archive.
package meta

import (
	"encoding/json"
	"fmt"
	"os"
)

// File is the descriptor filename inside the package folder.
const File = "meta.json"

// Model is one model the module exposes to the runtime.
type Model struct {
	API   string `json:"api"`
	Model string `json:"model"`
}

// Meta is the parsed meta.json.
type Meta struct {
	ModuleID    string  `json:"module_id"`
	Visibility  string  `json:"visibility,omitempty"`
	URL         string  `json:"url,omitempty"`
	Description string  `json:"description,omitempty"`
	Models      []Model `json:"models,omitempty"`
	Entrypoint  string  `json:"entrypoint"`
}

// Load reads and validates a meta.json file.
func Load(path string) (*Meta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", File, err)
	}

	var m Meta
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", File, err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Meta) validate() error {
	if m.ModuleID == "" {
		return fmt.Errorf("%s: module_id is required", File)
	}
	if m.Entrypoint == "" {
		return fmt.Errorf("%s: entrypoint is required", File)
	}
	return nil
}
