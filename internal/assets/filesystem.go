package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DirLoader loads families from a directory on disk.
type DirLoader struct {
	basePath string
}

// NewDirLoader creates a DirLoader rooted at basePath.
// Returns ErrInvalidBasePath if basePath is not a readable directory.
func NewDirLoader(basePath string) (*DirLoader, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("%w: empty path", ErrInvalidBasePath)
	}

	absPath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	}
	// Containment checks compare resolved paths.
	if realPath, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = realPath
	}

	info, err := os.Stat(absPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: directory does not exist: %s", ErrInvalidBasePath, absPath)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidBasePath, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: not a directory: %s", ErrInvalidBasePath, absPath)
	}
	if _, err := os.ReadDir(absPath); err != nil {
		return nil, fmt.Errorf("%w: cannot read directory: %v", ErrInvalidBasePath, err)
	}

	return &DirLoader{basePath: absPath}, nil
}

// BasePath returns the resolved root directory.
func (d *DirLoader) BasePath() string {
	return d.basePath
}

// LoadFamily implements Loader.
func (d *DirLoader) LoadFamily(name string) (*Family, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	tmpl, err := d.read(templatePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrFamilyNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	style, err := d.read(stylePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrIncompleteFamily, name)
	}
	if err != nil {
		return nil, err
	}

	return &Family{Name: name, Template: tmpl, Style: style}, nil
}

// read loads rel (slash-separated) after checking it resolves inside basePath.
// Missing files keep fs.ErrNotExist in their chain.
func (d *DirLoader) read(rel string) (string, error) {
	full := filepath.Join(d.basePath, filepath.FromSlash(rel))
	if err := d.contains(full); err != nil {
		return "", err
	}

	content, err := os.ReadFile(full) // #nosec G304 -- path validated above
	if errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, rel, err)
	}
	return string(content), nil
}

// contains rejects paths that resolve, through symlinks, outside basePath.
// A path that does not exist yet is checked as written.
func (d *DirLoader) contains(full string) error {
	resolved := full
	if real, err := filepath.EvalSymlinks(full); err == nil {
		resolved = real
	}
	if !strings.HasPrefix(resolved, d.basePath+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s escapes %s", ErrPathTraversal, full, d.basePath)
	}
	return nil
}

// Compile-time interface check.
var _ Loader = (*DirLoader)(nil)
