package dealerdocs

import (
	"math"
	"time"
)

// mmPerInch converts physical page units.
const mmPerInch = 25.4

// Policy is the export quality contract every renderer honors.
type Policy struct {
	Version      int           `yaml:"version" json:"version"`
	PageWidthMM  float64       `yaml:"pageWidthMm" json:"pageWidthMm"`
	PageHeightMM float64       `yaml:"pageHeightMm" json:"pageHeightMm"`
	PageWidthPx  int           `yaml:"pageWidthPx" json:"pageWidthPx"`
	PageHeightPx int           `yaml:"pageHeightPx" json:"pageHeightPx"`
	DPI          int           `yaml:"dpi" json:"dpi"`
	PDFScale     float64       `yaml:"pdfScale" json:"pdfScale"`
	ImageScale   float64       `yaml:"imageScale" json:"imageScale"`
	ImageQuality float64       `yaml:"imageQuality" json:"imageQuality"`
	Timeout      time.Duration `yaml:"timeout" json:"timeout"`
}

// exportPolicy is A4 landscape at 96 DPI.
var exportPolicy = Policy{
	Version:      1,
	PageWidthMM:  297,
	PageHeightMM: 210,
	PageWidthPx:  1123,
	PageHeightPx: 794,
	DPI:          96,
	PDFScale:     4,
	ImageScale:   5,
	ImageQuality: 0.95,
	Timeout:      20 * time.Second,
}

// ExportPolicy returns a copy of the export policy. Mutating the copy has no
// effect on later calls.
func ExportPolicy() Policy {
	return exportPolicy
}

// PageWidthInches returns the paper width for print APIs that take inches.
func (p Policy) PageWidthInches() float64 {
	return p.PageWidthMM / mmPerInch
}

// PageHeightInches returns the paper height in inches.
func (p Policy) PageHeightInches() float64 {
	return p.PageHeightMM / mmPerInch
}

// PxToInches converts CSS px at the policy DPI.
func (p Policy) PxToInches(px int) float64 {
	return float64(px) / float64(p.DPI)
}

// JPEGQuality maps ImageQuality onto the 0-100 scale image encoders use.
func (p Policy) JPEGQuality() int {
	return int(math.Round(p.ImageQuality * 100))
}

// MMToPx converts millimetres to whole px at dpi, rounding to nearest.
func MMToPx(mm float64, dpi int) int {
	return int(math.Round(mm / mmPerInch * float64(dpi)))
}
