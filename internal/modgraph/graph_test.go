package modgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/viam-labs/modpack/internal/recipe"
)

// table is the resolution table used across tests:
// viam-cpp-sdk -> grpc -> zlib, lame and soxr are leaves.
func table() map[string]recipe.LockEntry {
	return map[string]recipe.LockEntry{
		"viam-cpp-sdk": {Version: "0.21.0", Shared: true, Requires: []string{"grpc"}},
		"grpc":         {Version: "1.54.3", Shared: true, Requires: []string{"zlib"}},
		"zlib":         {Version: "1.3.1", Shared: false},
		"lame":         {Version: "3.100", Shared: true},
		"soxr":         {Version: "0.1.3", Shared: true},
	}
}

func reqs() []recipe.Requirement {
	return []recipe.Requirement{
		{Name: "viam-cpp-sdk", Version: "0.21.0"},
		{Name: "lame", Version: "3.100"},
		{Name: "soxr", Version: "0.1.3"},
	}
}

func names(deps []Dependency) string {
	var s []string
	for _, d := range deps {
		s = append(s, fmt.Sprintf("%s@%s", d.Name, d.Version))
	}
	return strings.Join(s, " ")
}

func TestPinnedResolve(t *testing.T) {
	deps, err := NewPinned(table()).Resolve(context.Background(), reqs())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := "viam-cpp-sdk@0.21.0 lame@3.100 soxr@0.1.3 grpc@1.54.3 zlib@1.3.1"
	if got := names(deps); got != want {
		t.Errorf("Resolve() = %q, want %q", got, want)
	}
}

func TestPinnedResolveErrors(t *testing.T) {
	t.Run("missing entry", func(t *testing.T) {
		_, err := NewPinned(table()).Resolve(context.Background(), []recipe.Requirement{
			{Name: "portaudio", Version: "19.7.0"},
		})
		if err == nil {
			t.Error("Resolve() error = nil, want error")
		}
	})

	t.Run("missing transitive entry", func(t *testing.T) {
		tbl := table()
		delete(tbl, "zlib")
		_, err := NewPinned(tbl).Resolve(context.Background(), reqs())
		if err == nil {
			t.Error("Resolve() error = nil, want error")
		}
	})

	t.Run("pin mismatch", func(t *testing.T) {
		_, err := NewPinned(table()).Resolve(context.Background(), []recipe.Requirement{
			{Name: "lame", Version: "3.99"},
		})
		if err == nil {
			t.Error("Resolve() error = nil, want error")
		}
	})
}

func TestResolveStaticPropagation(t *testing.T) {
	g := New(recipe.Options{Shared: false}, reqs())
	m, err := g.Resolve(context.Background(), NewPinned(table()))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// A static root forces every transitive dependency static, regardless of
	// its declared default.
	for _, dep := range m.Deps {
		if dep.Options.Shared {
			t.Errorf("%s: Shared = true after static propagation", dep.Name)
		}
	}
	if m.Options.Shared {
		t.Error("manifest Options.Shared = true, want false")
	}
}

func TestResolveSharedLeavesDefaults(t *testing.T) {
	g := New(recipe.Options{Shared: true}, reqs())
	m, err := g.Resolve(context.Background(), NewPinned(table()))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// Shared root: dependency defaults are untouched, including zlib's
	// explicit static default.
	for _, dep := range m.Deps {
		want := table()[dep.Name].Shared
		if dep.Options.Shared != want {
			t.Errorf("%s: Shared = %v, want declared default %v", dep.Name, dep.Options.Shared, want)
		}
	}
}

func TestResolveRunsOnce(t *testing.T) {
	g := New(recipe.DefaultOptions(), reqs())
	if _, err := g.Resolve(context.Background(), NewPinned(table())); err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	if _, err := g.Resolve(context.Background(), NewPinned(table())); !errors.Is(err, ErrResolved) {
		t.Errorf("second Resolve() error = %v, want ErrResolved", err)
	}
}

func TestResolveEmptyGraph(t *testing.T) {
	g := New(recipe.DefaultOptions(), nil)
	m, err := g.Resolve(context.Background(), NewPinned(nil))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(m.Deps) != 0 {
		t.Errorf("got %d deps, want 0", len(m.Deps))
	}
}

type failingResolver struct{ err error }

func (f failingResolver) Resolve(context.Context, []recipe.Requirement) ([]Dependency, error) {
	return nil, f.err
}

func TestResolveResolverError(t *testing.T) {
	g := New(recipe.DefaultOptions(), reqs())
	wantErr := errors.New("resolution backend unavailable")
	if _, err := g.Resolve(context.Background(), failingResolver{wantErr}); !errors.Is(err, wantErr) {
		t.Errorf("Resolve() error = %v, want %v", err, wantErr)
	}
}
