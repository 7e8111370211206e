package dealerdocs

import (
	"context"
	"fmt"
	"html"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs/internal/fileutil"
	"github.com/mahgouba/dealerdocs/internal/process"
)

// exporter turns rendered HTML into a PDF or raster artifact.
type exporter interface {
	Export(ctx context.Context, htmlContent string, opts *exportOptions) ([]byte, error)
	Close() error
}

// pageRenderer renders a local HTML file to allow testing without a browser.
type pageRenderer interface {
	RenderFromFile(ctx context.Context, filePath string, opts *exportOptions) ([]byte, error)
	Close() error
}

// Compile-time interface checks
var (
	_ exporter     = (*rodExporter)(nil)
	_ pageRenderer = (*rodRenderer)(nil)
)

// exportOptions carries everything the browser needs besides the markup.
type exportOptions struct {
	Format  ExportFormat // FormatPDF, FormatPNG or FormatJPEG
	Policy  Policy
	Margins Margins
	Footer  *footerData // nil: no PDF footer band
}

// footerData is the content of Chrome's native PDF footer.
type footerData struct {
	Text            string
	ShowPageNumbers bool
	Direction       string
	FontFamily      string // empty: the default family
}

// minFooterBandInches keeps the footer band clear of the page content.
const minFooterBandInches = 0.4

// rodRenderer drives headless Chrome through go-rod.
// Rod downloads Chromium on first use when no binary is configured.
type rodRenderer struct {
	mu         sync.Mutex
	browser    *rod.Browser
	launcher   *launcher.Launcher
	browserBin string
	logger     *zap.Logger
}

func newRodRenderer(browserBin string, logger *zap.Logger) *rodRenderer {
	return &rodRenderer{browserBin: browserBin, logger: logger}
}

// ensureBrowser lazily launches and connects to the browser.
func (r *rodRenderer) ensureBrowser() (*rod.Browser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.browser != nil {
		return r.browser, nil
	}

	l := launcher.New()

	bin := r.browserBin
	if bin == "" {
		bin = os.Getenv("ROD_BROWSER_BIN")
	}
	if bin != "" {
		l = l.Bin(bin)
	}

	// Containers and CI runners have no usable sandbox.
	if os.Getenv("CI") == "true" || os.Getenv("ROD_NO_SANDBOX") == "1" || bin != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	r.browser = b
	r.launcher = l
	r.logger.Debug("browser started", zap.Int("pid", l.PID()), zap.String("bin", bin))
	return b, nil
}

// Close shuts the browser down and kills any helper processes it left.
func (r *rodRenderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.browser != nil {
		err = r.browser.Close()
		r.browser = nil
	}
	if r.launcher != nil {
		pid := r.launcher.PID()
		r.launcher.Kill()
		process.KillTree(pid)
		r.launcher.Cleanup()
		r.launcher = nil
	}
	return err
}

// RenderFromFile loads filePath at the policy geometry and captures it.
// Every browser call observes ctx; the caller owns the deadline.
func (r *rodRenderer) RenderFromFile(ctx context.Context, filePath string, opts *exportOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := r.ensureBrowser()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	// Close through the un-scoped handle so an expired ctx cannot leak the tab.
	defer func() { _ = page.Close() }()

	p := page.Context(ctx)

	scale := opts.Policy.PDFScale
	if opts.Format != FormatPDF {
		scale = opts.Policy.ImageScale
	}
	if err := p.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.Policy.PageWidthPx,
		Height:            opts.Policy.PageHeightPx,
		DeviceScaleFactor: scale,
	}); err != nil {
		return nil, fmt.Errorf("%w: setting viewport: %v", ErrPageLoad, err)
	}

	if err := p.WaitLoad(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}
	// Arabic glyphs must be laid out before capture.
	if _, err := p.Eval(`() => document.fonts.ready.then(() => true)`); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: waiting for fonts: %v", ErrPageLoad, err)
	}

	if opts.Format == FormatPDF {
		return r.printPDF(p, opts)
	}
	return r.capture(p, opts)
}

func (r *rodRenderer) printPDF(p *rod.Page, opts *exportOptions) ([]byte, error) {
	reader, err := p.PDF(buildPDFOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}
	return buf, nil
}

func (r *rodRenderer) capture(p *rod.Page, opts *exportOptions) ([]byte, error) {
	req := &proto.PageCaptureScreenshot{Format: proto.PageCaptureScreenshotFormatPng}
	if opts.Format == FormatJPEG {
		req.Format = proto.PageCaptureScreenshotFormatJpeg
		q := opts.Policy.JPEGQuality()
		req.Quality = &q
	}

	data, err := p.Screenshot(false, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageCapture, err)
	}
	return data, nil
}

// buildPDFOptions maps the policy page and the style margins onto Chrome's
// print parameters, which are in inches.
func buildPDFOptions(opts *exportOptions) *proto.PagePrintToPDF {
	pol := opts.Policy
	bottom := pol.PxToInches(opts.Margins.Bottom)

	pdfOpts := &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(pol.PageWidthInches()),
		PaperHeight:     floatPtr(pol.PageHeightInches()),
		MarginTop:       floatPtr(pol.PxToInches(opts.Margins.Top)),
		MarginLeft:      floatPtr(pol.PxToInches(opts.Margins.Left)),
		MarginRight:     floatPtr(pol.PxToInches(opts.Margins.Right)),
		PrintBackground: true,
	}

	if footer := buildFooterTemplate(opts.Footer); footer != "" {
		bottom = max(bottom, minFooterBandInches)
		pdfOpts.DisplayHeaderFooter = true
		pdfOpts.HeaderTemplate = "<span></span>"
		pdfOpts.FooterTemplate = footer
	}
	pdfOpts.MarginBottom = floatPtr(bottom)

	return pdfOpts
}

// buildFooterTemplate renders Chrome's footer band. Chrome fills the
// pageNumber and totalPages classes. Returns "" when there is nothing to show.
func buildFooterTemplate(f *footerData) string {
	if f == nil {
		return ""
	}

	var parts []string
	if f.Text != "" {
		parts = append(parts, html.EscapeString(f.Text))
	}
	if f.ShowPageNumbers {
		parts = append(parts, `<span class="pageNumber"></span> / <span class="totalPages"></span>`)
	}
	if len(parts) == 0 {
		return ""
	}

	dir := DirectionRTL
	if f.Direction == DirectionLTR {
		dir = DirectionLTR
	}
	font := f.FontFamily
	if font == "" {
		font = defaultFontFamily
	}
	return fmt.Sprintf(`<div dir="%s" style="font-size: 9px; font-family: %s; color: #6b7280; width: 100%%; text-align: center; padding: 0 0.4in;">%s</div>`,
		dir, html.EscapeString(font), strings.Join(parts, " &middot; "))
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// rodExporter writes the markup to a temp file and hands it to the renderer.
type rodExporter struct {
	renderer pageRenderer
}

func newRodExporter(browserBin string, logger *zap.Logger) *rodExporter {
	return &rodExporter{renderer: newRodRenderer(browserBin, logger)}
}

// Export implements exporter.
func (e *rodExporter) Export(ctx context.Context, htmlContent string, opts *exportOptions) ([]byte, error) {
	tmpPath, cleanup, err := fileutil.WriteTempFile(htmlContent, "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return e.renderer.RenderFromFile(ctx, tmpPath, opts)
}

// Close releases browser resources.
func (e *rodExporter) Close() error {
	if e.renderer != nil {
		return e.renderer.Close()
	}
	return nil
}
