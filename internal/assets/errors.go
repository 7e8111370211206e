package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrFamilyNotFound indicates no template exists for the requested family.
	ErrFamilyNotFound = errors.New("template family not found")

	// ErrIncompleteFamily indicates the family template exists but its stylesheet does not.
	ErrIncompleteFamily = errors.New("template family missing stylesheet")

	// ErrInvalidAssetName indicates a family name that could escape the asset tree.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured base path is not a readable directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates a resolved path outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
