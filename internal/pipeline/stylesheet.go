package pipeline

import (
	"html/template"
	"strings"
)

// Stylesheet marks css as trusted for a <style> element after escaping
// "</" so the stylesheet cannot close the element early. Family stylesheets
// may come from a user-supplied asset directory.
func Stylesheet(css string) template.CSS {
	// #nosec G203 -- only the element-closing sequence is dangerous here
	return template.CSS(strings.ReplaceAll(css, "</", `<\/`))
}
