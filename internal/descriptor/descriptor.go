// Package descriptor extracts the package identity from a CMake build descriptor.
package descriptor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrVersionNotFound reports that the build descriptor does not contain
// exactly one project version declaration.
var ErrVersionNotFound = errors.New("descriptor: project version not found")

var versionRe = regexp.MustCompile(`set\(CMAKE_PROJECT_VERSION (.+)\)`)

// Identity identifies the package being built. Version is derived from the
// build descriptor, never hand-set.
type Identity struct {
	Name    string
	Version string
	License string
	URL     string
}

// ResolveVersion locates the single set(CMAKE_PROJECT_VERSION ...) line in
// the descriptor text and returns the captured token, trimmed. A descriptor
// with zero or multiple declarations fails: silently picking one would mask
// descriptor corruption.
func ResolveVersion(content []byte) (string, error) {
	matches := versionRe.FindAllSubmatch(content, -1)
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no CMAKE_PROJECT_VERSION declaration", ErrVersionNotFound)
	case 1:
		return strings.TrimSpace(string(matches[0][1])), nil
	default:
		return "", fmt.Errorf("%w: %d CMAKE_PROJECT_VERSION declarations", ErrVersionNotFound, len(matches))
	}
}

// NewIdentity builds the package identity from static metadata and the
// descriptor text. It is computed once per build invocation, at
// configuration time.
func NewIdentity(name, license, url string, content []byte) (Identity, error) {
	version, err := ResolveVersion(content)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Name:    name,
		Version: version,
		License: license,
		URL:     url,
	}, nil
}
