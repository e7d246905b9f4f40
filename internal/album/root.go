package album

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Root is the single directory every album path is resolved against.
// It is immutable after NewRoot and safe for concurrent use.
type Root struct {
	dir string
}

// NewRoot returns a Root for dir. dir is made absolute and must be an
// existing directory.
func NewRoot(dir string) (Root, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Root{}, fmt.Errorf("resolve root %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Root{}, fmt.Errorf("stat root %q: %w", abs, err)
	}
	if !info.IsDir() {
		return Root{}, fmt.Errorf("root %q is not a directory", abs)
	}
	return Root{dir: abs}, nil
}

// Dir returns the absolute root directory.
func (r Root) Dir() string {
	return r.dir
}

// Resolve maps an untrusted, URL-decoded path onto the filesystem below the
// root. Leading slashes are ignored and "." / ".." segments are folded;
// a result above the root fails with ErrPathEscape. The check is purely
// lexical and touches no file.
func (r Root) Resolve(rel string) (string, error) {
	if strings.ContainsRune(rel, 0) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}
	trimmed := strings.TrimLeft(rel, "/")
	if trimmed == "" {
		return r.dir, nil
	}
	local := filepath.FromSlash(trimmed)
	if !filepath.IsLocal(local) {
		return "", fmt.Errorf("%w: %q", ErrPathEscape, rel)
	}
	return filepath.Join(r.dir, local), nil
}

// Rel returns abs as a slash-separated path relative to the root.
// The root itself is "".
func (r Root) Rel(abs string) string {
	rel, err := filepath.Rel(r.dir, abs)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
