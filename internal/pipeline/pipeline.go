// Package pipeline runs the build-and-package phases end to end: version
// discovery, dependency resolution with linkage propagation, native
// compilation, and deployment assembly.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/viam-labs/modpack/internal/buildsys"
	"github.com/viam-labs/modpack/internal/buildsys/cmake"
	"github.com/viam-labs/modpack/internal/deploy"
	"github.com/viam-labs/modpack/internal/descriptor"
	"github.com/viam-labs/modpack/internal/env"
	"github.com/viam-labs/modpack/internal/lockedfile"
	"github.com/viam-labs/modpack/internal/meta"
	"github.com/viam-labs/modpack/internal/modgraph"
	"github.com/viam-labs/modpack/internal/recipe"
)

// descriptorFile is the build descriptor the version is extracted from.
const descriptorFile = "CMakeLists.txt"

// Config configures one pipeline invocation.
type Config struct {
	// SourceDir is the module source tree, holding the build descriptor,
	// the recipe and the runtime metadata.
	SourceDir string

	// Profile overrides the recipe's deployment profile when set.
	Profile string

	// Shared overrides the recipe's linkage option when set.
	Shared *bool

	// BuildType is the CMake build type (e.g. "Release").
	BuildType string

	// DeployRoot overrides the workspace deploy directory when set.
	DeployRoot string

	// SkipDeploy stops after the package folder is validated, producing no
	// archive.
	SkipDeploy bool

	// Resolver overrides the recipe-backed pinned resolver when set.
	Resolver modgraph.Resolver

	// Driver overrides the CMake driver when set.
	Driver buildsys.Driver

	Logger *log.Logger
}

// Result is what a successful invocation hands back to the caller.
type Result struct {
	Identity   descriptor.Identity
	Manifest   *modgraph.Manifest
	PackageDir string
	Archive    string
	Members    []string
	CacheHit   bool
}

// Pipeline executes the phases for one module. It is single-use and
// single-threaded: every phase runs to completion or fails the invocation,
// and a rerun starts from scratch.
type Pipeline struct {
	cfg    Config
	logger *log.Logger
}

// New returns a pipeline over the given configuration.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{cfg: cfg, logger: logger}
}

// Run executes all phases and returns the deployment result.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	rec, err := recipe.Load(filepath.Join(p.cfg.SourceDir, recipe.DefaultFile))
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(filepath.Join(p.cfg.SourceDir, descriptorFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", descriptorFile, err)
	}
	identity, err := descriptor.NewIdentity(rec.Name, rec.License, rec.URL, content)
	if err != nil {
		return nil, err
	}
	p.logger.Info("resolved module version", "module", identity.Name, "version", identity.Version)

	opts := rec.Options
	if p.cfg.Shared != nil {
		opts.Shared = *p.cfg.Shared
	}

	resolver := p.cfg.Resolver
	if resolver == nil {
		resolver = modgraph.NewPinned(rec.Resolution)
	}
	manifest, err := modgraph.New(opts, rec.Requires).Resolve(ctx, resolver)
	if err != nil {
		return nil, err
	}
	for _, dep := range manifest.Deps {
		p.logger.Debug("resolved dependency",
			"name", dep.Name, "version", dep.Version, "shared", dep.Options.Shared)
	}

	profileName := rec.Profile
	if p.cfg.Profile != "" {
		profileName = p.cfg.Profile
	}
	profile, err := deploy.LookupProfile(profileName)
	if err != nil {
		return nil, err
	}

	workspace, err := env.WorkspaceDir()
	if err != nil {
		return nil, err
	}
	moduleDir := filepath.Join(workspace, identity.Name)
	if err := os.MkdirAll(moduleDir, 0o700); err != nil {
		return nil, err
	}

	unlock, err := lockedfile.MutexAt(filepath.Join(moduleDir, ".lock")).Lock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	pkgDir, err := env.PackageDir(identity.Name)
	if err != nil {
		return nil, err
	}

	cacheHit, err := p.compile(identity, manifest, rec.Entrypoint, moduleDir, pkgDir)
	if err != nil {
		return nil, err
	}

	m, err := meta.Load(filepath.Join(pkgDir, meta.File))
	if err != nil {
		return nil, err
	}
	if m.Entrypoint != rec.Entrypoint {
		return nil, fmt.Errorf("%s entrypoint %q does not match recipe entrypoint %q",
			meta.File, m.Entrypoint, rec.Entrypoint)
	}

	if p.cfg.SkipDeploy {
		return &Result{
			Identity:   identity,
			Manifest:   manifest,
			PackageDir: pkgDir,
			CacheHit:   cacheHit,
		}, nil
	}

	deployRoot := p.cfg.DeployRoot
	if deployRoot == "" {
		deployRoot, err = env.DeployDir(identity.Name)
		if err != nil {
			return nil, err
		}
	}

	members, err := deploy.NewAssembler(rec.Entrypoint, profile, p.logger).Assemble(pkgDir, deployRoot)
	if err != nil {
		return nil, err
	}

	return &Result{
		Identity:   identity,
		Manifest:   manifest,
		PackageDir: pkgDir,
		Archive:    filepath.Join(deployRoot, deploy.ArchiveName),
		Members:    members,
		CacheHit:   cacheHit,
	}, nil
}

// compile runs configure/build/install through the build driver, unless a
// cache entry for this version and linkage already covers a package folder
// on disk.
func (p *Pipeline) compile(identity descriptor.Identity, manifest *modgraph.Manifest, entrypoint, moduleDir, pkgDir string) (cacheHit bool, err error) {
	cache := loadCache(moduleDir)
	if entry, ok := cache.get(identity.Version, manifest.Options.Shared); ok {
		if _, statErr := os.Stat(filepath.Join(pkgDir, entrypoint)); statErr == nil {
			p.logger.Info("build cache hit, skipping compilation",
				"version", identity.Version, "built", entry.BuildTime.Format(time.RFC3339))
			return true, nil
		}
	}

	drv := p.cfg.Driver
	if drv == nil {
		buildDir, err := env.BuildDir(identity.Name)
		if err != nil {
			return false, err
		}
		c := cmake.New(p.cfg.SourceDir, buildDir, pkgDir)
		if p.cfg.BuildType != "" {
			c.BuildType(p.cfg.BuildType)
		}
		drv = c
	} else {
		drv.Source(p.cfg.SourceDir)
		drv.InstallDir(pkgDir)
	}

	drv.Linkage(manifest.Options.Shared)

	// Dependency artifacts staged by the package manager live under the
	// workspace deps folder; inject any that are present.
	for _, dep := range manifest.Deps {
		root := filepath.Join(moduleDir, "deps", dep.Name+"@"+dep.Version)
		if _, err := os.Stat(root); err == nil {
			drv.Use(root)
		}
	}

	p.logger.Info("configuring build")
	if err := drv.Configure(); err != nil {
		return false, err
	}
	p.logger.Info("compiling")
	if err := drv.Build(); err != nil {
		return false, err
	}
	p.logger.Info("installing package folder", "dir", pkgDir)
	if err := drv.Install(); err != nil {
		return false, err
	}

	cache.set(identity.Version, manifest.Options.Shared, &buildEntry{BuildTime: time.Now()})
	if err := saveCache(moduleDir, cache); err != nil {
		return false, err
	}
	return false, nil
}
