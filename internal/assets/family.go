package assets

import "path"

// DefaultFamily is the built-in template family every other family falls back to.
const DefaultFamily = "classic"

// Family is a document template and the stylesheet written for it.
type Family struct {
	Name     string
	Template string // html/template source for document.html
	Style    string // CSS for styles/{name}.css
}

// Loader loads template families by name.
type Loader interface {
	// LoadFamily returns ErrFamilyNotFound when the family has no template,
	// ErrIncompleteFamily when its stylesheet is missing and
	// ErrInvalidAssetName when name fails ValidateName.
	LoadFamily(name string) (*Family, error)
}

// templatePath and stylePath are slash-separated, relative to a base.
func templatePath(name string) string {
	return path.Join("templates", name, "document.html")
}

func stylePath(name string) string {
	return path.Join("styles", name+".css")
}
