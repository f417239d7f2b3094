// Package modgraph resolves the module dependency graph and applies the
// module's linkage mode to it.
package modgraph

import (
	"context"
	"errors"
	"slices"

	"github.com/viam-labs/modpack/internal/recipe"
)

// ErrResolved reports a repeated resolution attempt on the same graph.
// Linkage propagation runs exactly once; running it again could clobber a
// manifest whose flags were deliberately overridden.
var ErrResolved = errors.New("modgraph: graph already resolved")

// Dependency is one resolved third-party component, carrying its own build
// options. Before propagation the options hold the dependency's declared
// defaults.
type Dependency struct {
	Name    string
	Version string
	Options recipe.Options
}

// Manifest is the immutable result of a resolution pass: the full transitive
// dependency list in resolution order, with linkage already propagated.
type Manifest struct {
	Options recipe.Options
	Deps    []Dependency
}

// Resolver expands a direct requirement set into the transitive dependency
// list. It is the boundary to the package manager's resolution machinery.
type Resolver interface {
	Resolve(ctx context.Context, reqs []recipe.Requirement) ([]Dependency, error)
}

// Graph holds the declared requirements and build options of the module
// being built. A Graph resolves at most once.
type Graph struct {
	opts     recipe.Options
	reqs     []recipe.Requirement
	resolved bool
}

// New returns a graph over the given options and direct requirements.
// Requirement order is preserved through resolution.
func New(opts recipe.Options, reqs []recipe.Requirement) *Graph {
	return &Graph{opts: opts, reqs: slices.Clone(reqs)}
}

// Resolve expands the requirement set through r and applies linkage
// propagation: when the module itself links statically, every dependency in
// the transitive closure is forced static as well, before the manifest is
// handed to the build phase. Mixing a static root with shared dependencies
// fails at link or load time, so that state class is eliminated up front
// rather than diagnosed after the fact.
//
// When the module links shared, dependency defaults are left untouched; a
// mixed configuration stays reachable through explicit per-dependency
// overrides in the resolution table.
//
// Resolve may be called once. Subsequent calls return ErrResolved.
func (g *Graph) Resolve(ctx context.Context, r Resolver) (*Manifest, error) {
	if g.resolved {
		return nil, ErrResolved
	}
	g.resolved = true

	deps, err := r.Resolve(ctx, g.reqs)
	if err != nil {
		return nil, err
	}

	deps = slices.Clone(deps)
	if !g.opts.Shared {
		for i := range deps {
			deps[i].Options.Shared = false
		}
	}

	return &Manifest{Options: g.opts, Deps: deps}, nil
}
