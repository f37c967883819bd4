// Package render draws a partitioned graph as a Graphviz diagram.
//
// Every partition (or, with [GroupClusters], every coarsened cluster) becomes
// a filled box containing its nodes, and the original edges are drawn across
// boxes, so cut edges are easy to spot:
//
//	dot := render.ToDOT(m, result, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// SVG is produced in-process by [github.com/goccy/go-graphviz]. PDF and PNG
// are converted from SVG by the external rsvg-convert tool (librsvg).
package render
