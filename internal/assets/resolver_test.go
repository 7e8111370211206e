package assets

import (
	"errors"
	"testing"
)

func TestNewResolver(t *testing.T) {
	t.Parallel()

	t.Run("embedded only", func(t *testing.T) {
		t.Parallel()

		r, err := NewResolver("")
		if err != nil {
			t.Fatalf("NewResolver(\"\") error: %v", err)
		}
		if r.HasCustomLoader() {
			t.Error("HasCustomLoader() = true, want false")
		}
	})

	t.Run("invalid custom path", func(t *testing.T) {
		t.Parallel()

		_, err := NewResolver("/nonexistent/dealerdocs/assets")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestResolver_LoadFamily(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	writeFamily(t, base, "classic", "<p>custom classic</p>", "p{color:red}")
	writeFamily(t, base, "gold", "<p>gold</p>", "p{}")
	writeFamily(t, base, "broken", "<p>broken</p>", "")

	r, err := NewResolver(base)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	tests := []struct {
		name         string
		family       string
		wantTemplate string
		wantErr      error
	}{
		{"custom overrides embedded", "classic", "<p>custom classic</p>", nil},
		{"custom only family", "gold", "<p>gold</p>", nil},
		{"incomplete custom family does not fall back", "broken", "", ErrIncompleteFamily},
		{"unknown everywhere", "absent", "", ErrFamilyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f, err := r.LoadFamily(tt.family)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("LoadFamily(%q) error = %v, want %v", tt.family, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadFamily(%q) unexpected error: %v", tt.family, err)
			}
			if f.Template != tt.wantTemplate {
				t.Errorf("Template = %q, want %q", f.Template, tt.wantTemplate)
			}
		})
	}
}

func TestResolver_FallsBackToEmbedded(t *testing.T) {
	t.Parallel()

	r, err := NewResolver(t.TempDir())
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	f, err := r.LoadFamily(DefaultFamily)
	if err != nil {
		t.Fatalf("LoadFamily(classic) error: %v", err)
	}
	if f.Style == "" {
		t.Error("embedded classic style is empty")
	}
}
