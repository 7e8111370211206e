package assets

import "errors"

// Resolver tries a custom directory first and falls back to the embedded
// families when the custom directory does not define the family.
type Resolver struct {
	custom   Loader // nil when no custom directory is configured
	embedded *EmbeddedLoader
}

// NewResolver creates a Resolver. An empty customBasePath uses embedded
// families only; an invalid one is an error.
func NewResolver(customBasePath string) (*Resolver, error) {
	r := &Resolver{embedded: NewEmbeddedLoader()}
	if customBasePath == "" {
		return r, nil
	}

	dir, err := NewDirLoader(customBasePath)
	if err != nil {
		return nil, err
	}
	r.custom = dir
	return r, nil
}

// LoadFamily implements Loader.
// Only ErrFamilyNotFound falls through to the embedded families; a custom
// family with a missing stylesheet or an unreadable file is reported as is.
func (r *Resolver) LoadFamily(name string) (*Family, error) {
	if r.custom != nil {
		f, err := r.custom.LoadFamily(name)
		if err == nil || !errors.Is(err, ErrFamilyNotFound) {
			return f, err
		}
	}
	return r.embedded.LoadFamily(name)
}

// HasCustomLoader reports whether a custom directory is configured.
func (r *Resolver) HasCustomLoader() bool {
	return r.custom != nil
}

// BuiltinNames lists the embedded families.
func (r *Resolver) BuiltinNames() []string {
	return r.embedded.Names()
}

// Compile-time interface check.
var _ Loader = (*Resolver)(nil)
