package yamlutil_test

// Notes:
// - Marshal error branches are not tested: goccy/go-yaml only fails on
//   unencodable types (channels, funcs) that never reach these helpers.

import (
	"errors"
	"strings"
	"testing"

	"github.com/mahgouba/dealerdocs/internal/yamlutil"
)

type record struct {
	Name    string `yaml:"name"`
	Count   int    `yaml:"count"`
	Enabled *bool  `yaml:"enabled"`
}

// ---------------------------------------------------------------------------
// TestUnmarshal - Lenient decoding
// ---------------------------------------------------------------------------

func TestUnmarshal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		dest    any
		wantErr error
	}{
		{"yaml", []byte("name: a\ncount: 2"), &record{}, nil},
		{"json", []byte(`{"name":"a","count":2}`), &record{}, nil},
		{"unknown field ignored", []byte("name: a\nextra: 1"), &record{}, nil},
		{"nil data", nil, &record{}, yamlutil.ErrNilData},
		{"empty data", []byte{}, &record{}, yamlutil.ErrNilData},
		{"nil destination", []byte("name: a"), nil, yamlutil.ErrNilDestination},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.Unmarshal(tt.data, tt.dest)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Unmarshal() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal() unexpected error: %v", err)
			}
			if r := tt.dest.(*record); r.Name != "a" {
				t.Errorf("Name = %q, want %q", r.Name, "a")
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestUnmarshalStrict - Unknown fields and type errors
// ---------------------------------------------------------------------------

func TestUnmarshalStrict(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"known fields", "name: a\ncount: 1", false},
		{"explicit false pointer", "enabled: false", false},
		{"unknown field", "name: a\nbogus: 1", true},
		{"wrong type", "count: many", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var r record
			err := yamlutil.UnmarshalStrict([]byte(tt.data), &r)
			if tt.wantErr && err == nil {
				t.Fatal("UnmarshalStrict() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("UnmarshalStrict() unexpected error: %v", err)
			}
			if err != nil && !strings.HasPrefix(err.Error(), "yamlutil: ") {
				t.Errorf("error %q should carry the yamlutil prefix", err)
			}
		})
	}
}

func TestUnmarshalStrict_KeepsExplicitFalse(t *testing.T) {
	t.Parallel()

	var r record
	if err := yamlutil.UnmarshalStrict([]byte("enabled: false"), &r); err != nil {
		t.Fatalf("UnmarshalStrict() error: %v", err)
	}
	if r.Enabled == nil || *r.Enabled {
		t.Errorf("Enabled = %v, want pointer to false", r.Enabled)
	}
}

// ---------------------------------------------------------------------------
// TestRequireMapping - Top-level shape check
// ---------------------------------------------------------------------------

func TestRequireMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{"yaml mapping", "name: a", nil},
		{"json object", `{"name":"a"}`, nil},
		{"empty json object", `{}`, nil},
		{"sequence", "- a\n- b", yamlutil.ErrNotMapping},
		{"scalar", "just text", yamlutil.ErrNotMapping},
		{"null", "null", yamlutil.ErrNotMapping},
		{"empty input", "", yamlutil.ErrNilData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.RequireMapping([]byte(tt.data))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("RequireMapping(%q) unexpected error: %v", tt.data, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("RequireMapping(%q) error = %v, want %v", tt.data, err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestRequireNumbers - Quoted numbers are not numbers
// ---------------------------------------------------------------------------

func TestRequireNumbers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr bool
	}{
		{"yaml integer", "size: 14", false},
		{"json integer", `{"size": 14}`, false},
		{"negative", "size: -3", false},
		{"float", "size: 1.5", false},
		{"missing key", "other: x", false},
		{"null value", "size: null", false},
		{"quoted json number", `{"size": "14"}`, true},
		{"quoted yaml number", `size: "14"`, true},
		{"word", "size: big", true},
		{"boolean", "size: true", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := yamlutil.RequireNumbers([]byte(tt.data), "size")
			if tt.wantErr {
				if !errors.Is(err, yamlutil.ErrNotNumber) {
					t.Errorf("RequireNumbers(%q) error = %v, want ErrNotNumber", tt.data, err)
				}
				return
			}
			if err != nil {
				t.Errorf("RequireNumbers(%q) unexpected error: %v", tt.data, err)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestInputSizeLimit - Oversized records
// ---------------------------------------------------------------------------

func TestInputSizeLimit(t *testing.T) {
	t.Parallel()

	data := []byte("name: " + strings.Repeat("x", yamlutil.MaxInputSize))
	var r record
	if err := yamlutil.Unmarshal(data, &r); !errors.Is(err, yamlutil.ErrInputTooLarge) {
		t.Errorf("Unmarshal() error = %v, want ErrInputTooLarge", err)
	}
}

func TestMarshal(t *testing.T) {
	t.Parallel()

	out, err := yamlutil.Marshal(record{Name: "a"})
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	if !strings.Contains(string(out), "name: a") {
		t.Errorf("Marshal() = %q, want to contain %q", out, "name: a")
	}
}
