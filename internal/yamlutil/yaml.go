// Package yamlutil decodes YAML and JSON records through goccy/go-yaml.
// JSON is accepted wherever YAML is, so HTTP bodies and files share one path.
package yamlutil

import (
	"errors"
	"fmt"

	"github.com/goccy/go-yaml"
)

// MaxInputSize limits a single record to 1MB.
var MaxInputSize = 1 << 20

var (
	ErrNilData        = errors.New("yamlutil: nil or empty data")
	ErrNilDestination = errors.New("yamlutil: nil destination pointer")
	ErrInputTooLarge  = errors.New("yamlutil: input exceeds maximum size")
	ErrNotMapping     = errors.New("yamlutil: top-level value is not a mapping")
	ErrNotNumber      = errors.New("yamlutil: value is not a number")
)

func checkInput(data []byte, v any) error {
	if len(data) == 0 {
		return ErrNilData
	}
	if len(data) > MaxInputSize {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrInputTooLarge, len(data), MaxInputSize)
	}
	if v == nil {
		return ErrNilDestination
	}
	return nil
}

// Unmarshal decodes data into v, ignoring unknown fields.
func Unmarshal(data []byte, v any) error {
	return decode(data, v)
}

// UnmarshalStrict decodes data into v and rejects unknown fields.
func UnmarshalStrict(data []byte, v any) error {
	return decode(data, v, yaml.Strict())
}

// decode honors json.Unmarshaler so types such as decimal.Decimal accept
// both bare and quoted numbers.
func decode(data []byte, v any, opts ...yaml.DecodeOption) error {
	if err := checkInput(data, v); err != nil {
		return err
	}
	opts = append(opts, yaml.UseJSONUnmarshaler())
	if err := yaml.UnmarshalWithOptions(data, v, opts...); err != nil {
		return fmt.Errorf("yamlutil: %w", err)
	}
	return nil
}

// RequireMapping returns ErrNotMapping unless data decodes to a key/value mapping.
// Scalars, sequences and null documents all fail.
func RequireMapping(data []byte) error {
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		return err
	}
	if _, ok := decoded.(map[string]any); !ok {
		return fmt.Errorf("%w: got %T", ErrNotMapping, decoded)
	}
	return nil
}

// RequireNumbers returns ErrNotNumber when any of keys is present in the
// top-level mapping with a non-numeric value. go-yaml converts quoted
// numbers into integer fields, so "14" would otherwise pass as 14.
// Missing and null keys are accepted.
func RequireNumbers(data []byte, keys ...string) error {
	var decoded map[string]any
	if err := Unmarshal(data, &decoded); err != nil {
		return err
	}
	for _, key := range keys {
		switch v := decoded[key].(type) {
		case nil, int, int64, uint64, float64:
		default:
			return fmt.Errorf("%w: %s is %T", ErrNotNumber, key, v)
		}
	}
	return nil
}

// Marshal encodes v as block-style YAML.
func Marshal(v any) ([]byte, error) {
	out, err := yaml.MarshalWithOptions(v, yaml.UseJSONMarshaler())
	if err != nil {
		return nil, fmt.Errorf("yamlutil: %w", err)
	}
	return out, nil
}
