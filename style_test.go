package dealerdocs

// Notes:
// - Resolve is table-driven over single overrides; every case compares the
//   full descriptor against DefaultStyle with one field changed, so any
//   unintended cross-field effect shows up as a diff.
// - Decoding is exercised through DecodeCompany with both YAML and JSON
//   input since records arrive in either form.

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

// ---------------------------------------------------------------------------
// TestDefaultStyle - Documented defaults
// ---------------------------------------------------------------------------

func TestDefaultStyle(t *testing.T) {
	t.Parallel()

	d := DefaultStyle()

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"HeaderBgColor", d.HeaderBgColor, "#ffffff"},
		{"HeaderTextColor", d.HeaderTextColor, "#000000"},
		{"TableHeaderBg", d.TableHeaderBg, "#f3f4f6"},
		{"TableHeaderText", d.TableHeaderText, "#111827"},
		{"TableBorderColor", d.TableBorderColor, "#d1d5db"},
		{"AccentColor", d.AccentColor, "#c49632"},
		{"FontSize", d.FontSize, 12},
		{"LineHeight", d.LineHeight, "1.5"},
		{"LogoPosition", d.LogoPosition, LogoLeft},
		{"LogoSize", d.LogoSize, LogoMedium},
		{"ShowWatermark", d.ShowWatermark, false},
		{"WatermarkText", d.WatermarkText, ""},
		{"ShowQRCode", d.ShowQRCode, true},
		{"QRPosition", d.QRPosition, QRTopRight},
		{"FooterText", d.FooterText, ""},
		{"ShowPageNumbers", d.ShowPageNumbers, true},
		{"Margins", d.Margins, Margins{20, 20, 20, 20}},
		{"Template", d.Template, "classic"},
	}
	for _, c := range checks {
		if !reflect.DeepEqual(c.got, c.want) {
			t.Errorf("DefaultStyle().%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if !strings.Contains(d.FontFamily, "Noto Sans Arabic") {
		t.Errorf("DefaultStyle().FontFamily = %q, want an Arabic-capable stack", d.FontFamily)
	}
}

// ---------------------------------------------------------------------------
// TestResolve - Field-by-field override merge
// ---------------------------------------------------------------------------

func TestResolve_EmptyCompanyIsDefault(t *testing.T) {
	t.Parallel()

	got, err := Resolve(&Company{Name: "معرض النخبة"})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if want := DefaultStyle(); !reflect.DeepEqual(*got, want) {
		t.Errorf("Resolve(empty) = %+v, want %+v", *got, want)
	}
}

func TestResolve_Overrides(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		company Company
		mutate  func(d *StyleDescriptor)
	}{
		{
			name:    "accent color",
			company: Company{AccentColor: strPtr("#123456")},
			mutate:  func(d *StyleDescriptor) { d.AccentColor = "#123456" },
		},
		{
			name:    "blank color falls back",
			company: Company{HeaderBgColor: strPtr("   ")},
			mutate:  func(*StyleDescriptor) {},
		},
		{
			name:    "color is trimmed",
			company: Company{TableBorderColor: strPtr("  rgb(1, 2, 3) ")},
			mutate:  func(d *StyleDescriptor) { d.TableBorderColor = "rgb(1, 2, 3)" },
		},
		{
			name:    "font size",
			company: Company{FontSize: intPtr(14)},
			mutate:  func(d *StyleDescriptor) { d.FontSize = 14 },
		},
		{
			name:    "explicit false qr",
			company: Company{ShowQRCode: boolPtr(false)},
			mutate:  func(d *StyleDescriptor) { d.ShowQRCode = false },
		},
		{
			name:    "explicit false page numbers",
			company: Company{ShowPageNumbers: boolPtr(false)},
			mutate:  func(d *StyleDescriptor) { d.ShowPageNumbers = false },
		},
		{
			name:    "explicit zero margin",
			company: Company{MarginTop: intPtr(0)},
			mutate:  func(d *StyleDescriptor) { d.Margins.Top = 0 },
		},
		{
			name:    "all margins",
			company: Company{MarginTop: intPtr(5), MarginBottom: intPtr(6), MarginLeft: intPtr(7), MarginRight: intPtr(8)},
			mutate:  func(d *StyleDescriptor) { d.Margins = Margins{5, 6, 7, 8} },
		},
		{
			name:    "enum case-insensitive",
			company: Company{LogoPosition: strPtr("Center"), LogoSize: strPtr("LARGE"), QRPosition: strPtr("bottom-left")},
			mutate: func(d *StyleDescriptor) {
				d.LogoPosition = LogoCenter
				d.LogoSize = LogoLarge
				d.QRPosition = QRBottomLeft
			},
		},
		{
			name:    "watermark",
			company: Company{ShowWatermark: boolPtr(true), WatermarkText: strPtr("نسخة العميل")},
			mutate: func(d *StyleDescriptor) {
				d.ShowWatermark = true
				d.WatermarkText = "نسخة العميل"
			},
		},
		{
			name:    "footer text kept verbatim",
			company: Company{FooterText: strPtr("  شكراً لتعاملكم  ")},
			mutate:  func(d *StyleDescriptor) { d.FooterText = "  شكراً لتعاملكم  " },
		},
		{
			name:    "template",
			company: Company{Template: strPtr("modern")},
			mutate:  func(d *StyleDescriptor) { d.Template = "modern" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			want := DefaultStyle()
			tt.mutate(&want)

			got, err := Resolve(&tt.company)
			if err != nil {
				t.Fatalf("Resolve() unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*got, want) {
				t.Errorf("Resolve() =\n  %+v\nwant\n  %+v", *got, want)
			}
		})
	}
}

func TestResolve_DoesNotShareState(t *testing.T) {
	t.Parallel()

	first, err := Resolve(&Company{AccentColor: strPtr("#000001")})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	first.Margins.Top = 99

	second, err := Resolve(&Company{})
	if err != nil {
		t.Fatalf("Resolve() unexpected error: %v", err)
	}
	if second.AccentColor != "#c49632" || second.Margins.Top != 20 {
		t.Errorf("second Resolve() leaked state from the first: %+v", second)
	}
}

func TestResolve_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		company *Company
	}{
		{"nil company", nil},
		{"font size too small", &Company{FontSize: intPtr(2)}},
		{"font size too large", &Company{FontSize: intPtr(100)}},
		{"negative margin", &Company{MarginLeft: intPtr(-1)}},
		{"margin too large", &Company{MarginBottom: intPtr(500)}},
		{"unknown logo position", &Company{LogoPosition: strPtr("middle")}},
		{"unknown logo size", &Company{LogoSize: strPtr("huge")}},
		{"unknown qr corner", &Company{QRPosition: strPtr("center")}},
		{"color closes declaration", &Company{AccentColor: strPtr("red; background: url(x)")}},
		{"color with brace", &Company{HeaderBgColor: strPtr("red}")}},
		{"font family with tag", &Company{FontFamily: strPtr("</style>")}},
		{"line height control char", &Company{LineHeight: strPtr("1.5\n")}},
		{"color too long", &Company{AccentColor: strPtr(strings.Repeat("a", 65))}},
		{"watermark too long", &Company{WatermarkText: strPtr(strings.Repeat("w", 101))}},
		{"footer too long", &Company{FooterText: strPtr(strings.Repeat("f", 501))}},
		{"template path", &Company{Template: strPtr("../etc")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.company)
			if !errors.Is(err, ErrInvalidCompanyRecord) {
				t.Errorf("Resolve() error = %v, want ErrInvalidCompanyRecord", err)
			}
			if got != nil {
				t.Errorf("Resolve() = %+v on error, want nil", got)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDecodeCompany - Record decoding
// ---------------------------------------------------------------------------

func TestDecodeCompany(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		check   func(t *testing.T, c *Company)
		wantErr bool
	}{
		{
			name:  "yaml overrides",
			input: "name: Al Noor Motors\npdfAccentColor: \"#0a7\"\npdfShowQrCode: false\npdfMarginTop: 0\n",
			check: func(t *testing.T, c *Company) {
				if c.AccentColor == nil || *c.AccentColor != "#0a7" {
					t.Errorf("AccentColor = %v", c.AccentColor)
				}
				if c.ShowQRCode == nil || *c.ShowQRCode {
					t.Errorf("ShowQRCode = %v, want explicit false", c.ShowQRCode)
				}
				if c.MarginTop == nil || *c.MarginTop != 0 {
					t.Errorf("MarginTop = %v, want explicit 0", c.MarginTop)
				}
				if c.FontSize != nil {
					t.Errorf("FontSize = %v, want absent", *c.FontSize)
				}
			},
		},
		{
			name:  "json record",
			input: `{"name": "معرض", "pdfFontSize": 14, "pdfLogoSize": "small"}`,
			check: func(t *testing.T, c *Company) {
				if c.FontSize == nil || *c.FontSize != 14 {
					t.Errorf("FontSize = %v", c.FontSize)
				}
				if c.LogoSize == nil || *c.LogoSize != "small" {
					t.Errorf("LogoSize = %v", c.LogoSize)
				}
			},
		},
		{name: "scalar record", input: "just a string", wantErr: true},
		{name: "list record", input: "- a\n- b\n", wantErr: true},
		{name: "unknown field", input: "name: x\npdfColour: red\n", wantErr: true},
		{name: "wrong type", input: "name: x\npdfFontSize: big\n", wantErr: true},
		{name: "quoted json number", input: `{"name": "x", "pdfFontSize": "14"}`, wantErr: true},
		{name: "quoted yaml margin", input: "name: x\npdfMarginLeft: \"0\"\n", wantErr: true},
		{name: "string boolean", input: `{"name": "x", "pdfShowQrCode": "no"}`, wantErr: true},
		{name: "invalid override", input: "name: x\npdfQrPosition: middle\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := DecodeCompany([]byte(tt.input))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCompanyRecord) {
					t.Errorf("DecodeCompany() error = %v, want ErrInvalidCompanyRecord", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeCompany() unexpected error: %v", err)
			}
			tt.check(t, c)
		})
	}
}

// ---------------------------------------------------------------------------
// TestVars - CSS custom property projection
// ---------------------------------------------------------------------------

func TestStyleDescriptor_Vars(t *testing.T) {
	t.Parallel()

	d := DefaultStyle()
	d.FontSize = 14
	d.LogoSize = LogoLarge
	d.Margins = Margins{Top: 0, Bottom: 10, Left: 15, Right: 25}

	vars := d.Vars()

	want := map[string]string{
		"header-bg":         "#ffffff",
		"header-text":       "#000000",
		"table-header-bg":   "#f3f4f6",
		"table-header-text": "#111827",
		"table-border":      "#d1d5db",
		"accent":            "#c49632",
		"font-size":         "14px",
		"font-family":       d.FontFamily,
		"line-height":       "1.5",
		"logo-height":       "80px",
		"margin-top":        "0px",
		"margin-bottom":     "10px",
		"margin-left":       "15px",
		"margin-right":      "25px",
	}
	if !reflect.DeepEqual(vars, want) {
		t.Errorf("Vars() =\n  %v\nwant\n  %v", vars, want)
	}
}

func TestStyleDescriptor_LogoHeight(t *testing.T) {
	t.Parallel()

	tests := []struct {
		size LogoSize
		want int
	}{
		{LogoSmall, 40},
		{LogoMedium, 60},
		{LogoLarge, 80},
		{"", 60},
	}
	for _, tt := range tests {
		d := StyleDescriptor{LogoSize: tt.size}
		if got := d.LogoHeight(); got != tt.want {
			t.Errorf("LogoHeight(%q) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

// ---------------------------------------------------------------------------
// TestBrandClass - Per-company CSS hook
// ---------------------------------------------------------------------------

func TestBrandClass(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"Al Noor Motors", "company-al-noor-motors"},
		{"  Al--Noor  ", "company-al-noor"},
		{"A&B Cars 2024", "company-a-b-cars-2024"},
		{"معرض النخبة", "company-معرض-النخبة"},
		{"", "company-default"},
		{"!!!", "company-default"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if got := BrandClass(tt.input); got != tt.expected {
				t.Errorf("BrandClass(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
