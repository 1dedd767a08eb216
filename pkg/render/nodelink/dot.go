package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/roadnet/pkg/geo"
	"github.com/matzehuels/roadnet/pkg/graph"
)

// DefaultWidth is the drawing width in inches.
const DefaultWidth = 12.0

// Options configures node-link diagram rendering.
type Options struct {
	// Labels draws node IDs next to the points.
	Labels bool
	// Weights labels edges with their weight.
	Weights bool
	// Width is the drawing width in inches. Defaults to DefaultWidth.
	Width float64
}

// ToDOT converts a road graph to undirected Graphviz DOT source with pinned
// node positions.
func ToDOT(g graph.Container, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	proj := newProjection(g, opts.Width)

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  node [shape=point, width=0.06, color=\"#1f2937\"];\n")
	buf.WriteString("  edge [color=\"#6b7280\", fontsize=8, fontcolor=\"#374151\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		var attrs []string
		if n.HasPosition() {
			x, y := proj.apply(*n.Pos)
			attrs = append(attrs, fmt.Sprintf("pos=\"%.4f,%.4f!\"", x, y))
		}
		if opts.Labels {
			attrs = append(attrs, fmt.Sprintf("xlabel=%q", n.ID), "fontsize=8")
		}
		writeStmt(&buf, strconv.Quote(n.ID), attrs)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		var attrs []string
		if opts.Weights && e.Weighted {
			attrs = append(attrs, fmt.Sprintf("label=\"%.3f\"", e.Weight))
		}
		writeStmt(&buf, fmt.Sprintf("%q -- %q", e.U, e.V), attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeStmt(buf *bytes.Buffer, head string, attrs []string) {
	buf.WriteString("  ")
	buf.WriteString(head)
	if len(attrs) > 0 {
		buf.WriteString(" [")
		for i, a := range attrs {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(a)
		}
		buf.WriteString("]")
	}
	buf.WriteString(";\n")
}

// projection maps positions to inches with an equirectangular projection
// around the graph's mean latitude.
type projection struct {
	minLon, minLat float64
	kx, scale      float64
}

func newProjection(g graph.Container, width float64) projection {
	p := projection{minLon: math.Inf(1), minLat: math.Inf(1), kx: 1, scale: 1}
	maxLon, maxLat := math.Inf(-1), math.Inf(-1)
	sumLat, n := 0.0, 0
	for _, node := range g.Nodes() {
		if !node.HasPosition() {
			continue
		}
		pos := *node.Pos
		p.minLon, maxLon = math.Min(p.minLon, pos.Lon), math.Max(maxLon, pos.Lon)
		p.minLat, maxLat = math.Min(p.minLat, pos.Lat), math.Max(maxLat, pos.Lat)
		sumLat += pos.Lat
		n++
	}
	if n == 0 {
		return p
	}
	p.kx = math.Cos(sumLat / float64(n) * math.Pi / 180)
	if span := (maxLon - p.minLon) * p.kx; span > 0 {
		p.scale = width / span
	} else if span := maxLat - p.minLat; span > 0 {
		p.scale = width / span
	}
	return p
}

func (p projection) apply(pos geo.Position) (x, y float64) {
	return (pos.Lon - p.minLon) * p.kx * p.scale, (pos.Lat - p.minLat) * p.scale
}

// RenderSVG renders DOT source to SVG using Graphviz's neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	data, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(data), nil
}

// RenderPNG renders DOT source to PNG using Graphviz's neato engine.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

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

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
