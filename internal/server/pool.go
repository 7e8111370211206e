package server

import (
	"context"

	"github.com/mahgouba/dealerdocs"
)

// PoolRenderer renders on a renderer borrowed from a pool for the length of
// one call.
type PoolRenderer struct {
	Pool *dealerdocs.RendererPool
}

// Compile-time interface check.
var _ DocumentRenderer = PoolRenderer{}

// Preview implements DocumentRenderer.
func (p PoolRenderer) Preview(ctx context.Context, doc *dealerdocs.Document) (*dealerdocs.Preview, error) {
	r, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Pool.Release(r)

	return r.Preview(ctx, doc)
}

// Export implements DocumentRenderer.
func (p PoolRenderer) Export(ctx context.Context, doc *dealerdocs.Document, format dealerdocs.ExportFormat) (*dealerdocs.Artifact, error) {
	r, err := p.Pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.Pool.Release(r)

	return r.Export(ctx, doc, format)
}
