// Package buildsys defines the boundary to the native build system.
package buildsys

import "fmt"

// Driver captures the lifecycle of a native build: configure the source
// tree, compile it, and install the outputs into the package folder. The
// underlying build system is an opaque collaborator; failures come back
// verbatim as BuildErrors.
type Driver interface {
	// Source overrides the source directory.
	Source(dir string)

	// InstallDir sets where Install stages the package folder.
	InstallDir(dir string)

	// Linkage selects shared or static linkage for the module binary.
	Linkage(shared bool)

	// Use injects a built dependency root into the build environment.
	Use(root string)

	// Env sets an environment variable for build subprocesses.
	Env(key, value string)

	// Lifecycle.
	Configure(args ...string) error
	Build(args ...string) error
	Install(args ...string) error

	// OutputDir returns where artifacts land.
	OutputDir() string
}

// BuildError wraps an opaque failure from the external build system,
// recording which lifecycle step failed.
type BuildError struct {
	Step string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s failed: %v", e.Step, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }
