// Package deploy assembles a built package folder into a deployable archive.
package deploy

import "fmt"

// Bundle names one runtime library family allowed into the deployed archive,
// with the filename glob that matches its version-suffixed shared objects.
// Bundling is an allow-list: shared objects in the package folder that match
// no family are left behind, since bundling everything found would risk
// pulling in unrelated or license-incompatible binaries.
type Bundle struct {
	Family  string
	Pattern string
}

// defaultBundles is the bundling policy table. Extend it here rather than in
// assembly logic.
var defaultBundles = []Bundle{
	{Family: "mp3lame", Pattern: "libmp3lame.so*"},
	{Family: "sqlite3", Pattern: "libsqlite3.so*"},
}

// Profile is a named deployment variant: which optional files the archive
// must carry beyond the binary and the metadata descriptor.
type Profile struct {
	Name string

	// Wrapper is the execution wrapper script filename. When set, the
	// wrapper is required and its absence fails assembly; when empty, no
	// wrapper is staged.
	Wrapper string

	// Bundles is the runtime library allow-list applied to the package
	// folder's lib/ subfolder. Empty means no bundling.
	Bundles []Bundle
}

var profiles = map[string]Profile{
	"minimal": {
		Name: "minimal",
	},
	"bundled": {
		Name:    "bundled",
		Wrapper: "run.sh",
		Bundles: defaultBundles,
	},
}

// LookupProfile returns the named deployment profile. An empty name selects
// "minimal".
func LookupProfile(name string) (Profile, error) {
	if name == "" {
		name = "minimal"
	}
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("deploy: unknown profile %q", name)
	}
	return p, nil
}
