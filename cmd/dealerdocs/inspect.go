package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/mahgouba/dealerdocs"
	"github.com/mahgouba/dealerdocs/internal/hints"
	"github.com/mahgouba/dealerdocs/internal/yamlutil"
)

// styleReport is the resolved style plus the values templates consume.
type styleReport struct {
	Style      dealerdocs.StyleDescriptor `yaml:"style" json:"style"`
	Vars       map[string]string          `yaml:"vars" json:"vars"`
	BrandClass string                     `yaml:"brandClass" json:"brandClass"`
	LogoHeight int                        `yaml:"logoHeight" json:"logoHeight"`
}

// runStyle resolves a company record read from a file or stdin.
func runStyle(_ context.Context, args []string, env *Environment) error {
	f, pos, err := parseReportFlags("style", args, env.Stderr, printStyleUsage)
	if err != nil {
		return err
	}
	if len(pos) != 1 {
		return fmt.Errorf("%w: style takes one company file or '-'", ErrUsage)
	}

	a, err := setup(&f.common, env)
	if err != nil {
		return err
	}
	defer a.Close()

	data, err := a.readInput(pos[0])
	if err != nil {
		return err
	}
	company, err := dealerdocs.DecodeCompany(data)
	if err != nil {
		return fmt.Errorf("%w%s", err, hints.ForInvalidCompany())
	}
	style, err := dealerdocs.Resolve(company)
	if err != nil {
		return err
	}

	report := styleReport{
		Style:      *style,
		Vars:       style.Vars(),
		BrandClass: dealerdocs.BrandClass(company.Name),
		LogoHeight: style.LogoHeight(),
	}
	if f.json {
		return writeJSON(env, report)
	}
	out, err := yamlutil.Marshal(report)
	if err != nil {
		return err
	}
	_, err = env.Stdout.Write(out)
	return err
}

// logoReport is one manufacturer lookup.
type logoReport struct {
	Manufacturer string `json:"manufacturer"`
	Path         string `json:"path,omitempty"`
	Found        bool   `json:"found"`
}

// runLogo looks manufacturers up in the built-in table and configured aliases.
func runLogo(_ context.Context, args []string, env *Environment) error {
	f, pos, err := parseReportFlags("logo", args, env.Stderr, printLogoUsage)
	if err != nil {
		return err
	}
	if len(pos) == 0 {
		return fmt.Errorf("%w: logo needs at least one manufacturer", ErrUsage)
	}

	a, err := setup(&f.common, env)
	if err != nil {
		return err
	}
	defer a.Close()

	resolver := dealerdocs.NewLogoResolver(a.cfg.Logos.Aliases)
	var (
		reports []logoReport
		missing []string
	)
	for _, name := range pos {
		path, ok := resolver.Lookup(name)
		if ok && a.cfg.Logos.BaseURL != "" {
			path = strings.TrimRight(a.cfg.Logos.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
		}
		reports = append(reports, logoReport{Manufacturer: name, Path: path, Found: ok})
		if !ok {
			missing = append(missing, name)
		}
	}

	if f.json {
		if err := writeJSON(env, reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			if r.Found {
				fmt.Fprintf(env.Stdout, "%s\t%s\n", r.Manufacturer, r.Path)
			}
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrNoLogo, strings.Join(missing, ", "))
	}
	return nil
}

// policyReport adds derived values to the policy.
type policyReport struct {
	dealerdocs.Policy
	Timeout          string  `json:"timeout"`
	JPEGQuality      int     `json:"jpegQuality"`
	PageWidthInches  float64 `json:"pageWidthInches"`
	PageHeightInches float64 `json:"pageHeightInches"`
}

// runPolicy prints the export quality policy.
func runPolicy(_ context.Context, args []string, env *Environment) error {
	f, pos, err := parseReportFlags("policy", args, env.Stderr, printPolicyUsage)
	if err != nil {
		return err
	}
	if len(pos) != 0 {
		return fmt.Errorf("%w: policy takes no arguments", ErrUsage)
	}

	p := dealerdocs.ExportPolicy()
	if f.json {
		return writeJSON(env, policyReport{
			Policy:           p,
			Timeout:          p.Timeout.String(),
			JPEGQuality:      p.JPEGQuality(),
			PageWidthInches:  p.PageWidthInches(),
			PageHeightInches: p.PageHeightInches(),
		})
	}

	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "version\t%d\n", p.Version)
	fmt.Fprintf(tw, "page\t%gx%g mm (%dx%d px at %d dpi)\n", p.PageWidthMM, p.PageHeightMM, p.PageWidthPx, p.PageHeightPx, p.DPI)
	fmt.Fprintf(tw, "pdf scale\t%g\n", p.PDFScale)
	fmt.Fprintf(tw, "image scale\t%g\n", p.ImageScale)
	fmt.Fprintf(tw, "image quality\t%g (jpeg %d)\n", p.ImageQuality, p.JPEGQuality())
	fmt.Fprintf(tw, "timeout\t%s\n", p.Timeout)
	return tw.Flush()
}
