package assets

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed styles/*.css templates/*/document.html
var embedded embed.FS

// EmbeddedLoader loads families compiled into the binary.
type EmbeddedLoader struct {
	fsys fs.FS
}

// NewEmbeddedLoader creates an EmbeddedLoader over the built-in families.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{fsys: embedded}
}

// LoadFamily implements Loader.
func (e *EmbeddedLoader) LoadFamily(name string) (*Family, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	tmpl, err := fs.ReadFile(e.fsys, templatePath(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrFamilyNotFound, name)
	}
	style, err := fs.ReadFile(e.fsys, stylePath(name))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrIncompleteFamily, name)
	}

	return &Family{Name: name, Template: string(tmpl), Style: string(style)}, nil
}

// Names lists the built-in families, sorted.
func (e *EmbeddedLoader) Names() []string {
	entries, err := fs.ReadDir(e.fsys, "templates")
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() && !strings.HasPrefix(entry.Name(), ".") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names
}

// Compile-time interface check.
var _ Loader = (*EmbeddedLoader)(nil)
