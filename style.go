package dealerdocs

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/mahgouba/dealerdocs/internal/assets"
	"github.com/mahgouba/dealerdocs/internal/yamlutil"
)

// LogoPosition places the company logo inside the header band.
type LogoPosition string

// Logo positions.
const (
	LogoLeft   LogoPosition = "left"
	LogoRight  LogoPosition = "right"
	LogoCenter LogoPosition = "center"
)

// LogoSize selects one of three logo heights.
type LogoSize string

// Logo sizes.
const (
	LogoSmall  LogoSize = "small"
	LogoMedium LogoSize = "medium"
	LogoLarge  LogoSize = "large"
)

// logoHeights maps each size to its rendered height in px.
var logoHeights = map[LogoSize]int{
	LogoSmall:  40,
	LogoMedium: 60,
	LogoLarge:  80,
}

// QRPosition is the page corner holding the QR code.
type QRPosition string

// QR code corners.
const (
	QRTopLeft     QRPosition = "top-left"
	QRTopRight    QRPosition = "top-right"
	QRBottomLeft  QRPosition = "bottom-left"
	QRBottomRight QRPosition = "bottom-right"
)

// Style limits.
const (
	minFontSize       = 6
	maxFontSize       = 72
	maxMargin         = 200
	maxColorLength    = 64
	maxFontFamilyLen  = 200
	maxLineHeightLen  = 16
	maxWatermarkLen   = 100
	maxFooterLen      = 500
	defaultFontFamily = `"Noto Sans Arabic", Arial, sans-serif`
)

// cssUnsafeChars cannot appear in values projected into CSS custom properties.
const cssUnsafeChars = ";{}<>\\"

// Company is a tenant record: display fields plus optional PDF style overrides.
// A nil override means "use the default"; a present value is honored as is,
// including false and 0.
type Company struct {
	Name    string `yaml:"name" json:"name"`
	Phone   string `yaml:"phone,omitempty" json:"phone,omitempty"`
	Address string `yaml:"address,omitempty" json:"address,omitempty"`
	LogoURL string `yaml:"logoUrl,omitempty" json:"logoUrl,omitempty"`

	HeaderBgColor    *string `yaml:"pdfHeaderBgColor,omitempty" json:"pdfHeaderBgColor,omitempty"`
	HeaderTextColor  *string `yaml:"pdfHeaderTextColor,omitempty" json:"pdfHeaderTextColor,omitempty"`
	TableHeaderBg    *string `yaml:"pdfTableHeaderBg,omitempty" json:"pdfTableHeaderBg,omitempty"`
	TableHeaderText  *string `yaml:"pdfTableHeaderText,omitempty" json:"pdfTableHeaderText,omitempty"`
	TableBorderColor *string `yaml:"pdfTableBorderColor,omitempty" json:"pdfTableBorderColor,omitempty"`
	AccentColor      *string `yaml:"pdfAccentColor,omitempty" json:"pdfAccentColor,omitempty"`
	FontSize         *int    `yaml:"pdfFontSize,omitempty" json:"pdfFontSize,omitempty"`
	FontFamily       *string `yaml:"pdfFontFamily,omitempty" json:"pdfFontFamily,omitempty"`
	LineHeight       *string `yaml:"pdfLineHeight,omitempty" json:"pdfLineHeight,omitempty"`
	LogoPosition     *string `yaml:"pdfLogoPosition,omitempty" json:"pdfLogoPosition,omitempty"`
	LogoSize         *string `yaml:"pdfLogoSize,omitempty" json:"pdfLogoSize,omitempty"`
	ShowWatermark    *bool   `yaml:"pdfShowWatermark,omitempty" json:"pdfShowWatermark,omitempty"`
	WatermarkText    *string `yaml:"pdfWatermarkText,omitempty" json:"pdfWatermarkText,omitempty"`
	ShowQRCode       *bool   `yaml:"pdfShowQrCode,omitempty" json:"pdfShowQrCode,omitempty"`
	QRPosition       *string `yaml:"pdfQrPosition,omitempty" json:"pdfQrPosition,omitempty"`
	FooterText       *string `yaml:"pdfFooterText,omitempty" json:"pdfFooterText,omitempty"`
	ShowPageNumbers  *bool   `yaml:"pdfShowPageNumbers,omitempty" json:"pdfShowPageNumbers,omitempty"`
	MarginTop        *int    `yaml:"pdfMarginTop,omitempty" json:"pdfMarginTop,omitempty"`
	MarginBottom     *int    `yaml:"pdfMarginBottom,omitempty" json:"pdfMarginBottom,omitempty"`
	MarginLeft       *int    `yaml:"pdfMarginLeft,omitempty" json:"pdfMarginLeft,omitempty"`
	MarginRight      *int    `yaml:"pdfMarginRight,omitempty" json:"pdfMarginRight,omitempty"`
	Template         *string `yaml:"pdfTemplate,omitempty" json:"pdfTemplate,omitempty"`
}

// Margins are page margins in px.
type Margins struct {
	Top    int `yaml:"top" json:"top"`
	Bottom int `yaml:"bottom" json:"bottom"`
	Left   int `yaml:"left" json:"left"`
	Right  int `yaml:"right" json:"right"`
}

// StyleDescriptor is the fully defaulted style for one render.
// Every field is populated; it is recomputed per render and never cached.
type StyleDescriptor struct {
	HeaderBgColor    string       `yaml:"headerBgColor" json:"headerBgColor"`
	HeaderTextColor  string       `yaml:"headerTextColor" json:"headerTextColor"`
	TableHeaderBg    string       `yaml:"tableHeaderBg" json:"tableHeaderBg"`
	TableHeaderText  string       `yaml:"tableHeaderText" json:"tableHeaderText"`
	TableBorderColor string       `yaml:"tableBorderColor" json:"tableBorderColor"`
	AccentColor      string       `yaml:"accentColor" json:"accentColor"`
	FontSize         int          `yaml:"fontSize" json:"fontSize"`
	FontFamily       string       `yaml:"fontFamily" json:"fontFamily"`
	LineHeight       string       `yaml:"lineHeight" json:"lineHeight"`
	LogoPosition     LogoPosition `yaml:"logoPosition" json:"logoPosition"`
	LogoSize         LogoSize     `yaml:"logoSize" json:"logoSize"`
	ShowWatermark    bool         `yaml:"showWatermark" json:"showWatermark"`
	WatermarkText    string       `yaml:"watermarkText" json:"watermarkText"`
	ShowQRCode       bool         `yaml:"showQrCode" json:"showQrCode"`
	QRPosition       QRPosition   `yaml:"qrPosition" json:"qrPosition"`
	FooterText       string       `yaml:"footerText" json:"footerText"`
	ShowPageNumbers  bool         `yaml:"showPageNumbers" json:"showPageNumbers"`
	Margins          Margins      `yaml:"margins" json:"margins"`
	Template         string       `yaml:"template" json:"template"`
}

// DefaultStyle returns the descriptor used when a company overrides nothing.
func DefaultStyle() StyleDescriptor {
	return StyleDescriptor{
		HeaderBgColor:    "#ffffff",
		HeaderTextColor:  "#000000",
		TableHeaderBg:    "#f3f4f6",
		TableHeaderText:  "#111827",
		TableBorderColor: "#d1d5db",
		AccentColor:      "#c49632",
		FontSize:         12,
		FontFamily:       defaultFontFamily,
		LineHeight:       "1.5",
		LogoPosition:     LogoLeft,
		LogoSize:         LogoMedium,
		ShowWatermark:    false,
		WatermarkText:    "",
		ShowQRCode:       true,
		QRPosition:       QRTopRight,
		FooterText:       "",
		ShowPageNumbers:  true,
		Margins:          Margins{Top: 20, Bottom: 20, Left: 20, Right: 20},
		Template:         assets.DefaultFamily,
	}
}

// numericCompanyFields must hold numbers, never quoted strings.
var numericCompanyFields = []string{
	"pdfFontSize", "pdfMarginTop", "pdfMarginBottom", "pdfMarginLeft", "pdfMarginRight",
}

// DecodeCompany decodes a YAML or JSON company record.
// Non-mapping input, unknown or wrongly typed fields and invalid override
// values all return ErrInvalidCompanyRecord.
func DecodeCompany(data []byte) (*Company, error) {
	if err := yamlutil.RequireMapping(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompanyRecord, err)
	}

	if err := yamlutil.RequireNumbers(data, numericCompanyFields...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompanyRecord, err)
	}

	var c Company
	if err := yamlutil.UnmarshalStrict(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCompanyRecord, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the overrides that are present. Absent overrides are never errors.
func (c *Company) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil company", ErrInvalidCompanyRecord)
	}

	colors := []struct {
		field string
		value *string
	}{
		{"pdfHeaderBgColor", c.HeaderBgColor},
		{"pdfHeaderTextColor", c.HeaderTextColor},
		{"pdfTableHeaderBg", c.TableHeaderBg},
		{"pdfTableHeaderText", c.TableHeaderText},
		{"pdfTableBorderColor", c.TableBorderColor},
		{"pdfAccentColor", c.AccentColor},
	}
	for _, col := range colors {
		if err := checkCSSValue(col.field, col.value, maxColorLength); err != nil {
			return err
		}
	}
	if err := checkCSSValue("pdfFontFamily", c.FontFamily, maxFontFamilyLen); err != nil {
		return err
	}
	if err := checkCSSValue("pdfLineHeight", c.LineHeight, maxLineHeightLen); err != nil {
		return err
	}

	if c.FontSize != nil && (*c.FontSize < minFontSize || *c.FontSize > maxFontSize) {
		return fmt.Errorf("%w: pdfFontSize %d (must be %d-%d)", ErrInvalidCompanyRecord, *c.FontSize, minFontSize, maxFontSize)
	}

	margins := []struct {
		field string
		value *int
	}{
		{"pdfMarginTop", c.MarginTop},
		{"pdfMarginBottom", c.MarginBottom},
		{"pdfMarginLeft", c.MarginLeft},
		{"pdfMarginRight", c.MarginRight},
	}
	for _, m := range margins {
		if m.value != nil && (*m.value < 0 || *m.value > maxMargin) {
			return fmt.Errorf("%w: %s %d (must be 0-%d)", ErrInvalidCompanyRecord, m.field, *m.value, maxMargin)
		}
	}

	if _, err := parseEnum(c.LogoPosition, "pdfLogoPosition", LogoLeft, LogoRight, LogoCenter); err != nil {
		return err
	}
	if _, err := parseEnum(c.LogoSize, "pdfLogoSize", LogoSmall, LogoMedium, LogoLarge); err != nil {
		return err
	}
	if _, err := parseEnum(c.QRPosition, "pdfQrPosition", QRTopLeft, QRTopRight, QRBottomLeft, QRBottomRight); err != nil {
		return err
	}

	if c.WatermarkText != nil && len(*c.WatermarkText) > maxWatermarkLen {
		return fmt.Errorf("%w: pdfWatermarkText too long (%d chars, max %d)", ErrInvalidCompanyRecord, len(*c.WatermarkText), maxWatermarkLen)
	}
	if c.FooterText != nil && len(*c.FooterText) > maxFooterLen {
		return fmt.Errorf("%w: pdfFooterText too long (%d chars, max %d)", ErrInvalidCompanyRecord, len(*c.FooterText), maxFooterLen)
	}

	if name := stringOr(c.Template, ""); name != "" {
		if err := assets.ValidateName(name); err != nil {
			return fmt.Errorf("%w: pdfTemplate: %v", ErrInvalidCompanyRecord, err)
		}
	}

	return nil
}

// Resolve merges company overrides onto DefaultStyle field by field.
// The result is always complete; malformed overrides fail the whole call.
func Resolve(company *Company) (*StyleDescriptor, error) {
	if err := company.Validate(); err != nil {
		return nil, err
	}

	d := DefaultStyle()
	c := company

	d.HeaderBgColor = stringOr(c.HeaderBgColor, d.HeaderBgColor)
	d.HeaderTextColor = stringOr(c.HeaderTextColor, d.HeaderTextColor)
	d.TableHeaderBg = stringOr(c.TableHeaderBg, d.TableHeaderBg)
	d.TableHeaderText = stringOr(c.TableHeaderText, d.TableHeaderText)
	d.TableBorderColor = stringOr(c.TableBorderColor, d.TableBorderColor)
	d.AccentColor = stringOr(c.AccentColor, d.AccentColor)
	d.FontSize = intOr(c.FontSize, d.FontSize)
	d.FontFamily = stringOr(c.FontFamily, d.FontFamily)
	d.LineHeight = stringOr(c.LineHeight, d.LineHeight)

	// Enum values were checked by Validate.
	if v, _ := parseEnum(c.LogoPosition, "", LogoLeft, LogoRight, LogoCenter); v != "" {
		d.LogoPosition = v
	}
	if v, _ := parseEnum(c.LogoSize, "", LogoSmall, LogoMedium, LogoLarge); v != "" {
		d.LogoSize = v
	}
	if v, _ := parseEnum(c.QRPosition, "", QRTopLeft, QRTopRight, QRBottomLeft, QRBottomRight); v != "" {
		d.QRPosition = v
	}

	d.ShowWatermark = boolOr(c.ShowWatermark, d.ShowWatermark)
	d.ShowQRCode = boolOr(c.ShowQRCode, d.ShowQRCode)
	d.ShowPageNumbers = boolOr(c.ShowPageNumbers, d.ShowPageNumbers)

	// Free text keeps its spacing; only nil means absent.
	if c.WatermarkText != nil {
		d.WatermarkText = *c.WatermarkText
	}
	if c.FooterText != nil {
		d.FooterText = *c.FooterText
	}

	d.Margins = Margins{
		Top:    intOr(c.MarginTop, d.Margins.Top),
		Bottom: intOr(c.MarginBottom, d.Margins.Bottom),
		Left:   intOr(c.MarginLeft, d.Margins.Left),
		Right:  intOr(c.MarginRight, d.Margins.Right),
	}
	d.Template = stringOr(c.Template, d.Template)

	return &d, nil
}

// Vars projects the descriptor onto CSS custom property names (without the
// leading "--") and unit-suffixed values.
func (d *StyleDescriptor) Vars() map[string]string {
	return map[string]string{
		"header-bg":         d.HeaderBgColor,
		"header-text":       d.HeaderTextColor,
		"table-header-bg":   d.TableHeaderBg,
		"table-header-text": d.TableHeaderText,
		"table-border":      d.TableBorderColor,
		"accent":            d.AccentColor,
		"font-size":         px(d.FontSize),
		"font-family":       d.FontFamily,
		"line-height":       d.LineHeight,
		"logo-height":       px(d.LogoHeight()),
		"margin-top":        px(d.Margins.Top),
		"margin-bottom":     px(d.Margins.Bottom),
		"margin-left":       px(d.Margins.Left),
		"margin-right":      px(d.Margins.Right),
	}
}

// LogoHeight returns the logo height in px for the descriptor's LogoSize.
func (d *StyleDescriptor) LogoHeight() int {
	if h, ok := logoHeights[d.LogoSize]; ok {
		return h
	}
	return logoHeights[LogoMedium]
}

// BrandClass returns the document-level class for per-company CSS:
// "company-" plus a lowercase slug of displayName. Letters of any script and
// digits are kept; every other run of characters becomes one hyphen.
func BrandClass(displayName string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(displayName) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	if b.Len() == 0 {
		return "company-default"
	}
	return "company-" + b.String()
}

// stringOr treats nil and blank strings as absent.
func stringOr(v *string, def string) string {
	if v == nil {
		return def
	}
	if s := strings.TrimSpace(*v); s != "" {
		return s
	}
	return def
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func px(n int) string {
	return strconv.Itoa(n) + "px"
}

// checkCSSValue rejects values that could close the declaration they are placed in.
func checkCSSValue(field string, v *string, maxLen int) error {
	if v == nil {
		return nil
	}
	s := *v
	if len(s) > maxLen {
		return fmt.Errorf("%w: %s too long (%d chars, max %d)", ErrInvalidCompanyRecord, field, len(s), maxLen)
	}
	if strings.ContainsAny(s, cssUnsafeChars) {
		return fmt.Errorf("%w: %s contains forbidden characters: %q", ErrInvalidCompanyRecord, field, s)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains control characters", ErrInvalidCompanyRecord, field)
		}
	}
	return nil
}

// parseEnum matches v case-insensitively against allowed.
// Returns "" with no error when v is absent or blank.
func parseEnum[T ~string](v *string, field string, allowed ...T) (T, error) {
	s := strings.ToLower(stringOr(v, ""))
	if s == "" {
		return "", nil
	}
	for _, a := range allowed {
		if string(a) == s {
			return a, nil
		}
	}
	names := make([]string, len(allowed))
	for i, a := range allowed {
		names[i] = string(a)
	}
	return "", fmt.Errorf("%w: %s %q (must be one of: %s)", ErrInvalidCompanyRecord, field, *v, strings.Join(names, ", "))
}
