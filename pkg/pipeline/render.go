package pipeline

import (
	"bytes"
	"context"
	"fmt"

	pkgio "github.com/matzehuels/linepart/pkg/io"
	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/model"
	"github.com/matzehuels/linepart/pkg/render"
)

// pngScale is the rasterization factor for PNG output.
const pngScale = 2.0

// Render generates output artifacts in the requested formats.
//
// JSON and CSV are written directly; DOT, SVG, PNG and PDF all start from the
// same DOT document, so it is built at most once.
func Render(ctx context.Context, m *model.Model[string], p graph.Partitioning, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	group, _ := render.ParseGroup(opts.GroupBy)

	var dot string
	dotFor := func() string {
		if dot == "" {
			dot = render.ToDOT(m, p, render.Options{Group: group, Detailed: opts.Detailed})
		}
		return dot
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
			buf  bytes.Buffer
		)

		switch format {
		case FormatJSON:
			err = pkgio.WriteResult(p, &buf)
			data = buf.Bytes()
		case FormatCSV:
			err = pkgio.WriteAssignmentCSV(p, &buf)
			data = buf.Bytes()
		case FormatDOT:
			data = []byte(dotFor())
		case FormatSVG:
			data, err = render.RenderSVG(ctx, dotFor())
		case FormatPNG:
			data, err = render.RenderPNG(ctx, dotFor(), pngScale)
		case FormatPDF:
			data, err = render.RenderPDF(ctx, dotFor())
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}
