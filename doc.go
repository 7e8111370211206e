// Package dealerdocs issues identifiers for car dealership quotations and
// invoices, resolves per-company document styling and renders documents to
// PDF, PNG or JPEG through headless Chrome.
//
// # Identifiers
//
// Quotations are numbered "Q-######" and invoices "I-######". Serials are six
// zero-padded digits:
//
//	s, err := dealerdocs.Format(123)          // "000123"
//	q := dealerdocs.IssueQuoteNumber()        // "Q-" + timestamp serial
//	next, err := dealerdocs.IssueSequential(n) // counter n+1, formatted
//
// Timestamp serials are not guaranteed unique. Callers that need uniqueness
// pass a Reserver to Generator.IssueUnique or keep a counter behind a
// Sequencer (see internal/store).
//
// # Company Styles
//
// A Company record carries optional overrides. Resolve merges them onto
// DefaultStyle field by field; an absent override keeps the default and a
// present one is honored even when it is false or zero:
//
//	style, err := dealerdocs.Resolve(company)
//	vars := style.Vars()                    // "accent" -> "#c49632", "font-size" -> "12px", ...
//	class := dealerdocs.BrandClass(company.Name)
//
// # Rendering
//
// A Renderer turns a Document into HTML and exports it under the fixed
// ExportPolicy (A4 landscape, 1123x794 px at 96 DPI, 20s timeout):
//
//	r, err := dealerdocs.NewRenderer(dealerdocs.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	defer r.Close()
//
//	artifact, err := r.Export(ctx, doc, dealerdocs.FormatPDF)
//
// An export that exceeds the policy timeout returns ErrExportTimeout and no
// data. Use RendererPool to run several exports in parallel; each renderer
// owns one browser.
//
// # Template Families
//
// Templates are grouped in families: templates/<name>/document.html plus
// styles/<name>.css. The embedded "classic" family is always available.
// WithAssetPath adds a directory searched first; a company that names a
// missing family is rendered with "classic".
package dealerdocs
