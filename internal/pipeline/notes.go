package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrNotesConversion indicates Markdown notes could not be rendered.
var ErrNotesConversion = errors.New("notes conversion failed")

// NotesRenderer turns free-text Markdown (terms, remarks) into an HTML fragment.
type NotesRenderer interface {
	RenderNotes(ctx context.Context, markdown string) (template.HTML, error)
}

// GoldmarkNotes renders notes with goldmark. Raw HTML in the input is
// dropped, so the output is safe to embed as template.HTML.
type GoldmarkNotes struct {
	md goldmark.Markdown
}

// NewGoldmarkNotes creates a GoldmarkNotes with GFM tables, strikethrough,
// autolinks and hard line breaks.
func NewGoldmarkNotes() *GoldmarkNotes {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	return &GoldmarkNotes{md: md}
}

// RenderNotes converts markdown to an HTML fragment. Blank input yields "".
// goldmark has no context support, so conversion runs in a goroutine and
// the caller stops waiting on cancellation.
func (g *GoldmarkNotes) RenderNotes(ctx context.Context, markdown string) (template.HTML, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	type result struct {
		html template.HTML
		err  error
	}
	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := g.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrNotesConversion, err)}
			return
		}
		// #nosec G203 -- goldmark runs without WithUnsafe, raw HTML is omitted
		done <- result{html: template.HTML(buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}

// Compile-time interface check.
var _ NotesRenderer = (*GoldmarkNotes)(nil)
