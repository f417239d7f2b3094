package pipeline

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/viam-labs/modpack/internal/buildsys"
)

// fakeDriver implements buildsys.Driver. Install materializes pkgFiles into
// the install dir, standing in for the real cmake install step.
type fakeDriver struct {
	sourceDir  string
	installDir string
	shared     *bool
	used       []string

	configures int
	builds     int
	installs   int

	failStep string
	pkgFiles map[string]string
}

var _ buildsys.Driver = (*fakeDriver)(nil)

func (d *fakeDriver) Source(dir string)     { d.sourceDir = dir }
func (d *fakeDriver) InstallDir(dir string) { d.installDir = dir }
func (d *fakeDriver) Linkage(shared bool)   { d.shared = &shared }
func (d *fakeDriver) Use(root string)       { d.used = append(d.used, root) }
func (d *fakeDriver) Env(key, value string) {}
func (d *fakeDriver) OutputDir() string     { return d.installDir }

func (d *fakeDriver) step(name string, count *int) error {
	if d.failStep == name {
		return &buildsys.BuildError{Step: name, Err: errors.New("forced failure")}
	}
	*count++
	return nil
}

func (d *fakeDriver) Configure(args ...string) error { return d.step("configure", &d.configures) }
func (d *fakeDriver) Build(args ...string) error     { return d.step("build", &d.builds) }

func (d *fakeDriver) Install(args ...string) error {
	if err := d.step("install", &d.installs); err != nil {
		return err
	}
	for name, content := range d.pkgFiles {
		path := filepath.Join(d.installDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}
