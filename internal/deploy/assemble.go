package deploy

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/viam-labs/modpack/internal/meta"
)

// ArchiveName is the fixed output filename inside the deploy root.
const ArchiveName = "module.tar.gz"

const libDir = "lib"

// AssemblyError reports a fatal failure while staging or archiving,
// recording which file and phase failed so it cannot be confused with a
// compiler failure.
type AssemblyError struct {
	File  string
	Phase string
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly failed at %s (%s): %v", e.File, e.Phase, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// Assembler produces one self-contained archive from a built package folder.
type Assembler struct {
	binary  string
	profile Profile
	logger  *log.Logger
}

// NewAssembler returns an assembler for the given entrypoint binary name and
// deployment profile.
func NewAssembler(binary string, profile Profile, logger *log.Logger) *Assembler {
	if logger == nil {
		logger = log.Default()
	}
	return &Assembler{binary: binary, profile: profile, logger: logger}
}

// Assemble stages the required files from pkgDir into a scratch directory
// under deployRoot, bundles allow-listed runtime libraries, and serializes
// the staging directory into deployRoot/module.tar.gz. The staging directory
// is removed on every exit path. On failure no archive is left behind.
//
// It returns the archive member paths in archive order.
func (a *Assembler) Assemble(pkgDir, deployRoot string) ([]string, error) {
	staging, err := os.MkdirTemp(deployRoot, "modpack-stage-")
	if err != nil {
		return nil, &AssemblyError{File: deployRoot, Phase: "stage", Err: err}
	}
	a.logger.Debug("created staging directory", "dir", staging)
	defer os.RemoveAll(staging)

	a.logger.Info("copying module binary", "file", a.binary)
	if err := copyFile(filepath.Join(pkgDir, a.binary), filepath.Join(staging, a.binary)); err != nil {
		return nil, &AssemblyError{File: a.binary, Phase: "stage", Err: err}
	}

	a.logger.Info("copying metadata descriptor", "file", meta.File)
	if err := copyFile(filepath.Join(pkgDir, meta.File), filepath.Join(staging, meta.File)); err != nil {
		return nil, &AssemblyError{File: meta.File, Phase: "stage", Err: err}
	}

	if a.profile.Wrapper != "" {
		a.logger.Info("copying wrapper script", "file", a.profile.Wrapper)
		if err := copyFile(filepath.Join(pkgDir, a.profile.Wrapper), filepath.Join(staging, a.profile.Wrapper)); err != nil {
			return nil, &AssemblyError{File: a.profile.Wrapper, Phase: "stage", Err: err}
		}
	}

	if err := a.bundleLibs(pkgDir, staging); err != nil {
		return nil, err
	}

	archivePath := filepath.Join(deployRoot, ArchiveName)
	a.logger.Info("creating archive", "file", ArchiveName)
	members, err := writeArchive(staging, archivePath)
	if err != nil {
		os.Remove(archivePath)
		return nil, &AssemblyError{File: ArchiveName, Phase: "archive", Err: err}
	}

	a.logger.Debug("archive contents", "file", ArchiveName)
	for _, m := range members {
		a.logger.Debug(m)
	}
	return members, nil
}

// bundleLibs copies allow-listed runtime libraries from pkgDir/lib into
// staging/lib. A missing lib/ folder means no bundled libraries are needed
// on this platform; match failures are never fatal.
func (a *Assembler) bundleLibs(pkgDir, staging string) error {
	if len(a.profile.Bundles) == 0 {
		return nil
	}
	srcLib := filepath.Join(pkgDir, libDir)
	if info, err := os.Stat(srcLib); err != nil || !info.IsDir() {
		a.logger.Info("no lib folder in package, nothing to bundle")
		return nil
	}

	for _, b := range a.profile.Bundles {
		matches, err := filepath.Glob(filepath.Join(srcLib, b.Pattern))
		if err != nil {
			a.logger.Info("skipping bundle family, bad pattern", "family", b.Family, "err", err)
			continue
		}
		for _, match := range matches {
			name := filepath.Base(match)
			a.logger.Info("bundling runtime library", "family", b.Family, "file", name)
			if err := copyFile(match, filepath.Join(staging, libDir, name)); err != nil {
				return &AssemblyError{File: filepath.Join(libDir, name), Phase: "stage", Err: err}
			}
		}
	}
	return nil
}

// writeArchive serializes the staging directory into a gzip-compressed tar
// at dest, with staging as the archive root so extraction reproduces the
// flat package layout. It returns the member paths in archive order.
func writeArchive(staging, dest string) ([]string, error) {
	f, err := os.Create(dest)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)

	var members []string
	err = filepath.WalkDir(staging, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(staging, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		members = append(members, header.Name)
		if d.IsDir() {
			return nil
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(tw, src)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := tw.Close(); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return members, nil
}

// copyFile copies src to dst, preserving the file mode so wrapper scripts
// stay executable. Parent directories of dst are created as needed.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
