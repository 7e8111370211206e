package assets

import "fmt"

// maxNameLength bounds family names; they end up in file paths.
const maxNameLength = 64

// ValidateName accepts ASCII letters, digits, '-' and '_' only.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: %d characters (max %d)", ErrInvalidAssetName, len(name), maxNameLength)
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
		}
	}
	return nil
}
