package dealerdocs

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs/internal/yamlutil"
)

// ExportFormat selects the export artifact.
type ExportFormat string

// Export formats. FormatHTML returns the preview markup without a browser.
const (
	FormatPDF  ExportFormat = "pdf"
	FormatPNG  ExportFormat = "png"
	FormatJPEG ExportFormat = "jpeg"
	FormatHTML ExportFormat = "html"
)

// ParseFormat accepts format names case-insensitively; "jpg" means FormatJPEG.
func ParseFormat(s string) (ExportFormat, error) {
	switch f := ExportFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatPDF, FormatPNG, FormatJPEG, FormatHTML:
		return f, nil
	case "jpg":
		return FormatJPEG, nil
	}
	return "", fmt.Errorf("%w: %q (must be pdf, png, jpeg or html)", ErrInvalidFormat, s)
}

// ContentType returns the MIME type of artifacts in this format.
func (f ExportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	case FormatJPEG:
		return "image/jpeg"
	case FormatHTML:
		return "text/html; charset=utf-8"
	}
	return "application/octet-stream"
}

// Extension returns the file extension for the format, without the dot.
func (f ExportFormat) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// Text directions.
const (
	DirectionRTL = "rtl"
	DirectionLTR = "ltr"
)

// dateLayout is the on-document and input date format.
const dateLayout = "2006-01-02"

// defaultCurrency applies when a document names none.
const defaultCurrency = "SAR"

// Document limits.
const (
	maxLineItems      = 200
	maxNotesLength    = 10_000
	maxCurrencyLength = 8
)

// Document is the business data rendered into a quotation or invoice.
type Document struct {
	Kind      Kind       `yaml:"kind" json:"kind"`
	Number    string     `yaml:"number,omitempty" json:"number,omitempty"` // issued when empty
	Date      string     `yaml:"date,omitempty" json:"date,omitempty"`     // YYYY-MM-DD, today when empty
	Company   Company    `yaml:"company" json:"company"`
	Customer  Customer   `yaml:"customer" json:"customer"`
	Vehicle   *Vehicle   `yaml:"vehicle,omitempty" json:"vehicle,omitempty"`
	Items     []LineItem `yaml:"items,omitempty" json:"items,omitempty"`
	Currency  string     `yaml:"currency,omitempty" json:"currency,omitempty"`
	Notes     string     `yaml:"notes,omitempty" json:"notes,omitempty"` // Markdown
	Direction string     `yaml:"direction,omitempty" json:"direction,omitempty"`
}

// Customer is the party the document is addressed to.
type Customer struct {
	Name  string `yaml:"name" json:"name"`
	Phone string `yaml:"phone,omitempty" json:"phone,omitempty"`
	Email string `yaml:"email,omitempty" json:"email,omitempty"`
}

// Vehicle describes the car being quoted or invoiced.
// Manufacturer is also the logo lookup key.
type Vehicle struct {
	Manufacturer  string `yaml:"manufacturer" json:"manufacturer"`
	Category      string `yaml:"category,omitempty" json:"category,omitempty"`
	TrimLevel     string `yaml:"trimLevel,omitempty" json:"trimLevel,omitempty"`
	Year          int    `yaml:"year,omitempty" json:"year,omitempty"`
	ExteriorColor string `yaml:"exteriorColor,omitempty" json:"exteriorColor,omitempty"`
	InteriorColor string `yaml:"interiorColor,omitempty" json:"interiorColor,omitempty"`
	ChassisNumber string `yaml:"chassisNumber,omitempty" json:"chassisNumber,omitempty"`
}

// LineItem is one priced row. A zero Quantity counts as one unit.
type LineItem struct {
	Description string          `yaml:"description" json:"description"`
	Quantity    int             `yaml:"quantity,omitempty" json:"quantity,omitempty"`
	UnitPrice   decimal.Decimal `yaml:"unitPrice" json:"unitPrice"`
}

// Units returns the effective quantity.
func (li LineItem) Units() int {
	if li.Quantity == 0 {
		return 1
	}
	return li.Quantity
}

// Amount returns UnitPrice times Units.
func (li LineItem) Amount() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Units())))
}

// Total sums every line item amount.
func (d *Document) Total() decimal.Decimal {
	total := decimal.Zero
	for _, li := range d.Items {
		total = total.Add(li.Amount())
	}
	return total
}

// DecodeDocument decodes a YAML or JSON document record.
// A company that is not a mapping or carries bad overrides returns
// ErrInvalidCompanyRecord; other problems return ErrInvalidDocument.
func DecodeDocument(data []byte) (*Document, error) {
	if err := yamlutil.RequireMapping(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var probe struct {
		Company any `yaml:"company"`
	}
	if err := yamlutil.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, ok := probe.Company.(map[string]any); probe.Company != nil && !ok {
		return nil, fmt.Errorf("%w: company is %T, not a mapping", ErrInvalidCompanyRecord, probe.Company)
	}

	var doc Document
	if err := yamlutil.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the document before rendering.
// Returns nil if d is nil; the renderer rejects nil documents separately.
func (d *Document) Validate() error {
	if d == nil {
		return nil
	}

	if err := d.Kind.Validate(); err != nil {
		return err
	}

	if d.Number != "" {
		id, ok := ParseIdentifier(d.Number)
		if !ok {
			return fmt.Errorf("%w: number %q is not a formatted identifier", ErrInvalidDocument, d.Number)
		}
		if id.Kind != d.Kind {
			return fmt.Errorf("%w: number %q does not match kind %q", ErrInvalidDocument, d.Number, d.Kind)
		}
	}

	if d.Date != "" {
		if _, err := time.Parse(dateLayout, d.Date); err != nil {
			return fmt.Errorf("%w: date %q (want YYYY-MM-DD)", ErrInvalidDocument, d.Date)
		}
	}

	switch strings.ToLower(d.Direction) {
	case "", DirectionRTL, DirectionLTR:
	default:
		return fmt.Errorf("%w: %q (must be rtl or ltr)", ErrInvalidDirection, d.Direction)
	}

	if len(d.Currency) > maxCurrencyLength {
		return fmt.Errorf("%w: currency %q too long", ErrInvalidDocument, d.Currency)
	}
	if len(d.Notes) > maxNotesLength {
		return fmt.Errorf("%w: notes too long (%d chars, max %d)", ErrInvalidDocument, len(d.Notes), maxNotesLength)
	}

	if len(d.Items) > maxLineItems {
		return fmt.Errorf("%w: %d line items (max %d)", ErrInvalidDocument, len(d.Items), maxLineItems)
	}
	for i, li := range d.Items {
		if strings.TrimSpace(li.Description) == "" {
			return fmt.Errorf("%w: item %d has no description", ErrInvalidDocument, i+1)
		}
		if li.Quantity < 0 {
			return fmt.Errorf("%w: item %d quantity %d is negative", ErrInvalidDocument, i+1, li.Quantity)
		}
		if li.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: item %d unit price %s is negative", ErrInvalidDocument, i+1, li.UnitPrice)
		}
	}

	return d.Company.Validate()
}

// direction returns the normalized text direction, rtl by default.
func (d *Document) direction() string {
	if strings.EqualFold(d.Direction, DirectionLTR) {
		return DirectionLTR
	}
	return DirectionRTL
}

// currency returns the document currency or the default.
func (d *Document) currency() string {
	if c := strings.TrimSpace(d.Currency); c != "" {
		return c
	}
	return defaultCurrency
}

// Option configures a Renderer.
type Option func(*rendererConfig)

// rendererConfig holds construction-time settings for Renderer.
type rendererConfig struct {
	assetPath   string
	logoBaseURL string
	logoAliases map[string]string
	browserBin  string
	logger      *zap.Logger
	generator   *Generator
	now         func() time.Time
	policy      Policy
	exporter    exporter // injected by tests
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *rendererConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithAssetPath loads template families from dir before the embedded ones.
func WithAssetPath(dir string) Option {
	return func(c *rendererConfig) {
		c.assetPath = dir
	}
}

// WithLogoBaseURL prefixes manufacturer logo paths, e.g. "https://cdn.example.com/".
func WithLogoBaseURL(base string) Option {
	return func(c *rendererConfig) {
		c.logoBaseURL = base
	}
}

// WithLogoAliases adds manufacturer names to the logo table.
func WithLogoAliases(aliases map[string]string) Option {
	return func(c *rendererConfig) {
		c.logoAliases = aliases
	}
}

// WithBrowserBin uses a specific Chrome/Chromium binary instead of
// ROD_BROWSER_BIN or the auto-downloaded one.
func WithBrowserBin(path string) Option {
	return func(c *rendererConfig) {
		c.browserBin = path
	}
}

// WithGenerator sets the generator used when a document has no number.
func WithGenerator(g *Generator) Option {
	if g == nil {
		panic("dealerdocs: WithGenerator requires a non-nil generator")
	}
	return func(c *rendererConfig) {
		c.generator = g
	}
}

// WithNow sets the clock used for documents without a date.
func WithNow(now func() time.Time) Option {
	if now == nil {
		panic("dealerdocs: WithNow requires a non-nil clock")
	}
	return func(c *rendererConfig) {
		c.now = now
	}
}
