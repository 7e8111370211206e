package assets

import (
	"errors"
	"slices"
	"strings"
	"testing"
	"testing/fstest"
)

func TestEmbeddedLoader_LoadFamily(t *testing.T) {
	t.Parallel()

	loader := NewEmbeddedLoader()

	tests := []struct {
		name    string
		family  string
		wantErr error
	}{
		{"classic loads", DefaultFamily, nil},
		{"unknown family", "nonexistent-family-xyz", ErrFamilyNotFound},
		{"empty name", "", ErrInvalidAssetName},
		{"traversal", "../classic", ErrInvalidAssetName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := loader.LoadFamily(tt.family)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadFamily(%q) error = %v, want %v", tt.family, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFamily(%q) unexpected error: %v", tt.family, err)
			}
			if f.Name != tt.family {
				t.Errorf("Name = %q, want %q", f.Name, tt.family)
			}
		})
	}
}

func TestEmbeddedLoader_ClassicContent(t *testing.T) {
	t.Parallel()

	f, err := NewEmbeddedLoader().LoadFamily(DefaultFamily)
	if err != nil {
		t.Fatalf("LoadFamily(classic) error: %v", err)
	}

	// The renderer relies on these hooks being present in the template.
	for _, want := range []string{
		`class="document {{.BrandClass}}"`,
		`style="{{.StyleVars}}"`,
		"{{.Number}}",
		"{{.Stylesheet}}",
	} {
		if !strings.Contains(f.Template, want) {
			t.Errorf("classic template should contain %q", want)
		}
	}

	for _, want := range []string{"var(--header-bg)", "var(--accent)", "var(--table-border)", "var(--margin-top)"} {
		if !strings.Contains(f.Style, want) {
			t.Errorf("classic stylesheet should use %q", want)
		}
	}
}

func TestEmbeddedLoader_IncompleteFamily(t *testing.T) {
	t.Parallel()

	loader := &EmbeddedLoader{fsys: fstest.MapFS{
		"templates/bare/document.html": {Data: []byte("<p></p>")},
	}}

	_, err := loader.LoadFamily("bare")
	if !errors.Is(err, ErrIncompleteFamily) {
		t.Errorf("LoadFamily(bare) error = %v, want ErrIncompleteFamily", err)
	}
}

func TestEmbeddedLoader_Names(t *testing.T) {
	t.Parallel()

	names := NewEmbeddedLoader().Names()
	if !slices.Contains(names, DefaultFamily) {
		t.Errorf("Names() = %v, want to contain %q", names, DefaultFamily)
	}
}
