package dealerdocs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs/internal/assets"
	"github.com/mahgouba/dealerdocs/internal/pipeline"
)

// qrPixels is the QR image edge before the page is scaled for export.
const qrPixels = 192

// Preview is a rendered document and the inputs that shaped it.
type Preview struct {
	Identifier Identifier        `json:"-"`
	Number     string            `json:"number"`
	Style      StyleDescriptor   `json:"style"`
	Vars       map[string]string `json:"vars"`
	BrandClass string            `json:"brandClass"`
	Family     string            `json:"family"` // template family actually used
	HTML       string            `json:"html"`
}

// Artifact is an exported document.
type Artifact struct {
	Preview *Preview
	Format  ExportFormat
	Data    []byte
}

// ContentType returns the MIME type of Data.
func (a *Artifact) ContentType() string {
	return a.Format.ContentType()
}

// Filename returns "<identifier>.<ext>", e.g. "Q-000123.pdf".
func (a *Artifact) Filename() string {
	return a.Preview.Number + "." + a.Format.Extension()
}

// Renderer resolves identity and style for a document, renders it to HTML
// and exports it through headless Chrome under the export policy.
// It is safe for concurrent use; the browser starts on the first export.
type Renderer struct {
	cfg      rendererConfig
	assets   *assets.Resolver
	logos    *LogoResolver
	notes    pipeline.NotesRenderer
	exporter exporter
	logger   *zap.Logger
}

// NewRenderer creates a Renderer. It fails only when WithAssetPath names an
// unusable directory.
func NewRenderer(opts ...Option) (*Renderer, error) {
	cfg := rendererConfig{
		logger:    zap.NewNop(),
		generator: defaultGenerator,
		now:       time.Now,
		policy:    ExportPolicy(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	resolver, err := assets.NewResolver(cfg.assetPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAssetPath, err)
	}

	r := &Renderer{
		cfg:      cfg,
		assets:   resolver,
		logos:    NewLogoResolver(cfg.logoAliases),
		notes:    pipeline.NewGoldmarkNotes(),
		exporter: cfg.exporter,
		logger:   cfg.logger,
	}
	if r.exporter == nil {
		r.exporter = newRodExporter(cfg.browserBin, cfg.logger)
	}
	return r, nil
}

// Policy returns the export policy this renderer applies.
func (r *Renderer) Policy() Policy {
	return r.cfg.policy
}

// Close releases the browser, if one was started.
func (r *Renderer) Close() error {
	if r.exporter != nil {
		return r.exporter.Close()
	}
	return nil
}

// Preview renders doc to HTML without touching the browser.
// A document without a number gets one from the renderer's generator.
func (r *Renderer) Preview(ctx context.Context, doc *Document) (*Preview, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	id, err := r.identify(doc)
	if err != nil {
		return nil, err
	}

	style, err := Resolve(&doc.Company)
	if err != nil {
		return nil, err
	}

	family, err := r.loadFamily(style.Template)
	if err != nil {
		return nil, err
	}

	notes, err := r.notes.RenderNotes(ctx, doc.Notes)
	if err != nil {
		return nil, fmt.Errorf("rendering notes: %w", err)
	}

	vars := style.Vars()
	brand := BrandClass(doc.Company.Name)

	view, err := r.buildView(doc, id, style, vars, brand, family, notes)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(family.Name).Parse(family.Template)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrTemplateRender, family.Name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("%w: executing %q: %v", ErrTemplateRender, family.Name, err)
	}

	return &Preview{
		Identifier: id,
		Number:     id.String(),
		Style:      *style,
		Vars:       vars,
		BrandClass: brand,
		Family:     family.Name,
		HTML:       buf.String(),
	}, nil
}

// Export renders doc and converts it to format. PDF and image exports run
// under the policy timeout; exceeding it returns ErrExportTimeout and no data.
func (r *Renderer) Export(ctx context.Context, doc *Document, format ExportFormat) (*Artifact, error) {
	switch format {
	case FormatPDF, FormatPNG, FormatJPEG, FormatHTML:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormat, format)
	}

	preview, err := r.Preview(ctx, doc)
	if err != nil {
		return nil, err
	}
	if format == FormatHTML {
		return &Artifact{Preview: preview, Format: format, Data: []byte(preview.HTML)}, nil
	}

	pol := r.cfg.policy
	exportCtx, cancel := context.WithTimeout(ctx, pol.Timeout)
	defer cancel()

	log := r.logger.With(zap.String("identifier", preview.Number), zap.String("format", string(format)))
	log.Debug("export started", zap.String("family", preview.Family))
	start := time.Now()

	data, err := r.exporter.Export(exportCtx, preview.HTML, &exportOptions{
		Format:  format,
		Policy:  pol,
		Margins: preview.Style.Margins,
		Footer: &footerData{
			Text:            preview.Style.FooterText,
			ShowPageNumbers: preview.Style.ShowPageNumbers,
			Direction:       doc.direction(),
			FontFamily:      preview.Style.FontFamily,
		},
	})

	// The policy deadline is absolute: late output is discarded.
	if errors.Is(exportCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		log.Warn("export timed out", zap.Duration("timeout", pol.Timeout))
		return nil, fmt.Errorf("%w: %s export of %s after %s", ErrExportTimeout, format, preview.Number, pol.Timeout)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("exporting %s: %w", format, err)
	}

	log.Debug("export finished", zap.Duration("elapsed", time.Since(start)), zap.Int("bytes", len(data)))
	return &Artifact{Preview: preview, Format: format, Data: data}, nil
}

// identify returns the document's own number or issues a new one.
func (r *Renderer) identify(doc *Document) (Identifier, error) {
	if doc.Number != "" {
		id, _ := ParseIdentifier(doc.Number) // checked by Validate
		return id, nil
	}
	return r.cfg.generator.Issue(doc.Kind)
}

// loadFamily loads the named template family. Families that are missing or
// incomplete fall back to the default family with a warning.
func (r *Renderer) loadFamily(name string) (*assets.Family, error) {
	family, err := r.assets.LoadFamily(name)
	if err == nil {
		return family, nil
	}
	if name == assets.DefaultFamily ||
		!(errors.Is(err, assets.ErrFamilyNotFound) || errors.Is(err, assets.ErrIncompleteFamily)) {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}

	r.logger.Warn("template family unavailable, using default",
		zap.String("requested", name),
		zap.String("fallback", assets.DefaultFamily),
		zap.Error(err))

	family, err = r.assets.LoadFamily(assets.DefaultFamily)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}
	return family, nil
}

// documentView is the data handed to a family template.
type documentView struct {
	Lang             string
	Dir              string
	Labels           labels
	Number           string
	Date             string
	BrandClass       string
	StyleVars        template.CSS
	PageCSS          template.CSS
	Stylesheet       template.CSS
	Company          Company
	CompanyLogo      string
	LogoPosition     LogoPosition
	Customer         Customer
	Vehicle          *Vehicle
	ManufacturerLogo string
	Items            []itemView
	Total            string
	Currency         string
	Notes            template.HTML
	QRCode           template.URL
	QRPosition       QRPosition
	Watermark        string
	FooterText       string
}

type itemView struct {
	Index       int
	Description string
	Quantity    int
	UnitPrice   string
	Amount      string
}

func (r *Renderer) buildView(doc *Document, id Identifier, style *StyleDescriptor, vars map[string]string,
	brand string, family *assets.Family, notes template.HTML,
) (*documentView, error) {
	dir := doc.direction()
	lbl := labelsFor(dir, doc.Kind)

	date := doc.Date
	if date == "" {
		date = r.cfg.now().Format(dateLayout)
	}

	v := &documentView{
		Lang:         lbl.Lang,
		Dir:          dir,
		Labels:       lbl,
		Number:       id.String(),
		Date:         date,
		BrandClass:   brand,
		StyleVars:    template.CSS(buildStyleDeclarations(vars)), // #nosec G203 -- values checked by Company.Validate
		PageCSS:      template.CSS(buildPageCSS(r.cfg.policy)),   // #nosec G203 -- built from numeric policy fields
		Stylesheet:   pipeline.Stylesheet(family.Style),
		Company:      doc.Company,
		CompanyLogo:  strings.TrimSpace(doc.Company.LogoURL),
		LogoPosition: style.LogoPosition,
		Customer:     doc.Customer,
		Vehicle:      doc.Vehicle,
		Total:        formatMoney(doc.Total()),
		Currency:     doc.currency(),
		Notes:        notes,
		QRPosition:   style.QRPosition,
	}

	if doc.Vehicle != nil {
		if p, ok := r.logos.Lookup(doc.Vehicle.Manufacturer); ok {
			v.ManufacturerLogo = joinURL(r.cfg.logoBaseURL, p)
		}
	}

	for i, li := range doc.Items {
		v.Items = append(v.Items, itemView{
			Index:       i + 1,
			Description: li.Description,
			Quantity:    li.Units(),
			UnitPrice:   formatMoney(li.UnitPrice),
			Amount:      formatMoney(li.Amount()),
		})
	}

	if style.ShowQRCode {
		qr, err := pipeline.QRDataURI(v.Number, qrPixels)
		if err != nil {
			return nil, err
		}
		v.QRCode = qr
	}
	if style.ShowWatermark && style.WatermarkText != "" {
		v.Watermark = breakURLPattern(style.WatermarkText)
	}
	v.FooterText = style.FooterText

	return v, nil
}

// joinURL prefixes an asset path with base, keeping exactly one slash between them.
func joinURL(base, p string) string {
	if base == "" {
		return p
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p, "/")
}

// formatMoney renders d with two decimals and comma thousands separators.
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + frac
}
