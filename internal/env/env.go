// Package env resolves the modpack workspace layout on the local machine.
package env

import (
	"os"
	"path/filepath"
)

// WorkspaceEnv overrides the workspace root when set.
const WorkspaceEnv = "MODPACK_WORKSPACE"

// WorkspaceDir returns the workspace root, creating it if needed. It
// defaults to <user cache dir>/.modpack.
func WorkspaceDir() (string, error) {
	if dir := os.Getenv(WorkspaceEnv); dir != "" {
		return ensureDir(dir)
	}
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(userCacheDir, ".modpack"))
}

// BuildDir returns the per-module build tree directory.
func BuildDir(name string) (string, error) {
	return moduleSubdir(name, "build")
}

// PackageDir returns the per-module package folder written by the install
// step and read by assembly.
func PackageDir(name string) (string, error) {
	return moduleSubdir(name, "package")
}

// DeployDir returns the per-module deploy root where archives land.
func DeployDir(name string) (string, error) {
	return moduleSubdir(name, "deploy")
}

func moduleSubdir(name, kind string) (string, error) {
	root, err := WorkspaceDir()
	if err != nil {
		return "", err
	}
	return ensureDir(filepath.Join(root, name, kind))
}

func ensureDir(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}
