package pipeline

import (
	"context"
	"time"

	cgerrors "github.com/matzehuels/classgraph/pkg/errors"
	"github.com/matzehuels/classgraph/pkg/observability"
	"github.com/matzehuels/classgraph/pkg/render"
	"github.com/matzehuels/classgraph/pkg/render/dot"
)

// renderFormat renders one format. PNG and PDF are converted from the SVG
// already rendered in this run when there is one.
func (r *Runner) renderFormat(ctx context.Context, doc, format string, done map[string][]byte, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := renderArtifact(ctx, doc, format, done[FormatSVG], opts.Scale)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	return data, err
}

func renderArtifact(ctx context.Context, doc, format string, svg []byte, scale float64) ([]byte, error) {
	switch format {
	case FormatDOT:
		return []byte(doc), nil
	case FormatSVG:
		return dot.RenderSVG(ctx, doc)
	case FormatPNG:
		if svg != nil {
			return render.ToPNG(ctx, svg, scale)
		}
		return dot.RenderPNG(ctx, doc, scale)
	case FormatPDF:
		if svg != nil {
			return render.ToPDF(ctx, svg)
		}
		return dot.RenderPDF(ctx, doc)
	}
	return nil, cgerrors.Unsupported(format + " output")
}
