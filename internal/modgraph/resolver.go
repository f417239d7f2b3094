package modgraph

import (
	"context"
	"fmt"

	"github.com/viam-labs/modpack/internal/recipe"
)

// Pinned resolves requirements against the recipe's resolution table,
// walking the transitive closure breadth-first. Direct requirements come out
// first, in declaration order, followed by transitive dependencies in
// discovery order.
type Pinned struct {
	table map[string]recipe.LockEntry
}

// NewPinned returns a resolver over the given resolution table.
func NewPinned(table map[string]recipe.LockEntry) *Pinned {
	return &Pinned{table: table}
}

// Resolve implements Resolver.
func (p *Pinned) Resolve(ctx context.Context, reqs []recipe.Requirement) ([]Dependency, error) {
	var deps []Dependency
	seen := make(map[string]bool, len(reqs))

	var queue []string
	for _, req := range reqs {
		entry, ok := p.table[req.Name]
		if !ok {
			return nil, fmt.Errorf("modgraph: no resolution entry for %s", req.Name)
		}
		if entry.Version != req.Version {
			return nil, fmt.Errorf("modgraph: %s pinned to %s but resolved to %s",
				req.Name, req.Version, entry.Version)
		}
		queue = append(queue, req.Name)
	}

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		entry, ok := p.table[name]
		if !ok {
			return nil, fmt.Errorf("modgraph: no resolution entry for %s", name)
		}
		deps = append(deps, Dependency{
			Name:    name,
			Version: entry.Version,
			Options: recipe.Options{Shared: entry.Shared},
		})
		queue = append(queue, entry.Requires...)
	}

	return deps, nil
}
