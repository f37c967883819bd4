package render

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	"github.com/matzehuels/linepart/pkg/errors"
)

// The embedded Graphviz build has no cairo renderer, so raster and PDF
// output is produced from SVG by librsvg.
const rsvgBinary = "rsvg-convert"

// ToPDF converts SVG bytes to PDF.
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return convertSVG(ctx, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG. scale is the zoom factor passed to
// rsvg-convert; values <= 0 mean 1.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	if scale <= 0 {
		scale = 1
	}
	return convertSVG(ctx, svg, "png", "--zoom", strconv.FormatFloat(scale, 'f', 2, 64))
}

// HasConverter reports whether PDF and PNG output is available.
func HasConverter() bool {
	_, err := exec.LookPath(rsvgBinary)
	return err == nil
}

func convertSVG(ctx context.Context, svg []byte, format string, extra ...string) ([]byte, error) {
	if !HasConverter() {
		return nil, errors.New(errors.ErrCodeUnsupported,
			"%s output needs %s (apt install librsvg2-bin, brew install librsvg)", format, rsvgBinary)
	}

	cmd := exec.CommandContext(ctx, rsvgBinary, append([]string{"--format", format}, extra...)...)
	cmd.Stdin = bytes.NewReader(svg)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "%s: %s", rsvgBinary, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}
