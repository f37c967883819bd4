package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/linepart/pkg/graph"
	"github.com/matzehuels/linepart/pkg/model"
)

// Group selects which node groups become Graphviz clusters.
type Group int

const (
	// GroupPartitions draws one box per balanced partition.
	GroupPartitions Group = iota
	// GroupClusters draws one box per coarsened cluster.
	GroupClusters
)

// ParseGroup converts a flag value into a Group.
func ParseGroup(s string) (Group, bool) {
	switch s {
	case "", "partitions":
		return GroupPartitions, true
	case "clusters":
		return GroupClusters, true
	}
	return GroupPartitions, false
}

// Options configures diagram generation.
type Options struct {
	Group Group

	// Detailed adds node and edge weights to labels.
	Detailed bool
}

var palette = []string{"#dbeafe", "#dcfce7", "#fef9c3", "#fce7f3", "#ede9fe", "#ffedd5", "#e0f2fe", "#f1f5f9"}

type nodeGroup struct {
	label string
	nodes []string
}

// ToDOT converts a graph and its partitioning to Graphviz DOT source. Each
// partition (or cluster) becomes a filled subgraph box; edges are drawn
// between the original nodes. Symmetric graphs are drawn without arrows.
func ToDOT(m *model.Model[string], p graph.Partitioning, opts Options) string {
	g := graph.FromModel(m)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14];\n")
	if !g.Directed {
		buf.WriteString("  edge [dir=none];\n")
	}
	buf.WriteString("\n")

	placed := make(map[string]bool, len(g.Nodes))
	for i, grp := range groups(p, opts.Group) {
		fmt.Fprintf(&buf, "  subgraph \"cluster_%d\" {\n", i+1)
		fmt.Fprintf(&buf, "    label=%q;\n", grp.label)
		fmt.Fprintf(&buf, "    style=\"rounded,filled\";\n    fillcolor=%q;\n", palette[i%len(palette)])
		for _, n := range grp.nodes {
			fmt.Fprintf(&buf, "    %q [label=%q];\n", n, nodeLabel(m, n, opts.Detailed))
			placed[n] = true
		}
		buf.WriteString("  }\n")
	}
	for _, n := range g.Nodes {
		if !placed[n.ID] {
			fmt.Fprintf(&buf, "  %q [label=%q];\n", n.ID, nodeLabel(m, n.ID, opts.Detailed))
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		if opts.Detailed {
			fmt.Fprintf(&buf, "  %q -> %q [label=\"%d\"];\n", e.From, e.To, e.EdgeWeight())
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func groups(p graph.Partitioning, by Group) []nodeGroup {
	var out []nodeGroup
	if by == GroupClusters {
		for _, c := range p.Clusters {
			out = append(out, nodeGroup{
				label: fmt.Sprintf("cluster %s (%d)", c.Root, len(c.Members)),
				nodes: c.Members,
			})
		}
		return out
	}
	for _, part := range p.Partitions {
		out = append(out, nodeGroup{
			label: fmt.Sprintf("partition %d · cost %d", part.Index, part.Cost),
			nodes: part.Nodes,
		})
	}
	return out
}

func nodeLabel(m *model.Model[string], id string, detailed bool) string {
	if !detailed {
		return id
	}
	return id + "\nw=" + strconv.FormatInt(m.Weight(id), 10)
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz build.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPDF renders DOT source as PDF via SVG. Requires rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG. Requires rsvg-convert.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return ToPNG(ctx, svg, scale)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with one whose
// width and height match the viewBox, so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
