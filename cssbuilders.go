package dealerdocs

import (
	"fmt"
	"slices"
	"strings"
)

// buildStyleDeclarations renders style vars as inline custom property
// declarations ("--accent: #c49632; --font-size: 12px") in key order.
// Values must already have passed Company.Validate.
func buildStyleDeclarations(vars map[string]string) string {
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var buf strings.Builder
	for i, k := range keys {
		if i > 0 {
			buf.WriteString(" ")
		}
		fmt.Fprintf(&buf, "--%s: %s;", k, vars[k])
	}
	return buf.String()
}

// buildPageCSS fixes the paper size for print and the canvas size for screen
// captures, both taken from the policy.
func buildPageCSS(p Policy) string {
	return fmt.Sprintf(`
@page {
  size: %gmm %gmm;
}
@media screen {
  html, body {
    width: %dpx;
  }
  .document {
    width: %dpx;
    min-height: %dpx;
  }
}
`, p.PageWidthMM, p.PageHeightMM, p.PageWidthPx, p.PageWidthPx, p.PageHeightPx)
}

// breakURLPattern swaps dots for ONE DOT LEADER (U+2024) so PDF viewers do
// not turn watermark text such as "example.com" into a link.
func breakURLPattern(text string) string {
	return strings.ReplaceAll(text, ".", "․")
}
