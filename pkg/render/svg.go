package render

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/ajstarks/svgo"
)

// Element ids referenced from the drawn primitives.
const (
	GradientID = "link-gradient"
	GlowID     = "node-glow"
)

const (
	linkOpacity = 0.72
	nodeOpacity = 0.92
	glowOpacity = 0.36
	glowStroke  = 3.5
	glowBlur    = 18
)

var gradientStops = []svg.Offcolor{
	{Offset: 0, Color: "rgb(56,249,215)", Opacity: 0.65},
	{Offset: 55, Color: "rgb(113,213,255)", Opacity: 0.52},
	{Offset: 100, Color: "rgb(140,91,250)", Opacity: 0.55},
}

// Options controls frame output.
type Options struct {
	// Background fills the canvas when set. SVG output is transparent
	// otherwise; PNG output falls back to DefaultBackground.
	Background string
	// Labels draws node labels.
	Labels bool
}

// DefaultBackground is the PNG backdrop.
const DefaultBackground = "#070a12"

// WriteSVG writes f as a standalone SVG document.
func WriteSVG(w io.Writer, f Frame, opts Options) error {
	width, height := canvasSize(f)
	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(width, height, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))

	canvas.Def()
	canvas.LinearGradient(GradientID, 0, 0, 100, 0, gradientStops)
	if !f.ReducedMotion {
		canvas.Filter(GlowID, `x="-50%"`, `y="-50%"`, `width="200%"`, `height="200%"`)
		canvas.FeGaussianBlur(svg.Filterspec{Result: "coloredBlur"}, glowBlur, glowBlur)
		canvas.FeMerge([]string{"coloredBlur", "SourceGraphic"})
		canvas.Fend()
	}
	canvas.DefEnd()

	if opts.Background != "" {
		canvas.Rect(0, 0, width, height, "fill:"+opts.Background)
	}

	canvas.Group(`class="graph-links"`)
	for _, l := range f.Links {
		attrs := []string{
			`class="graph-link"`,
			attr("data-kind", string(l.Kind)),
			fmt.Sprintf(`stroke="url(#%s)"`, GradientID),
			fmt.Sprintf(`stroke-width="%g"`, l.Width),
			`stroke-linecap="round"`,
			fmt.Sprintf(`stroke-opacity="%g"`, linkOpacity),
		}
		if l.Hidden {
			attrs = append(attrs, `display="none"`)
		}
		canvas.Line(px(l.X1), px(l.Y1), px(l.X2), px(l.Y2), attrs...)
	}
	canvas.Gend()

	if f.ReducedMotion {
		canvas.Group(`class="graph-nodes"`)
	} else {
		canvas.Group(`class="graph-nodes"`, fmt.Sprintf(`filter="url(#%s)"`, GlowID))
	}
	for _, n := range f.Nodes {
		writeSVGNode(canvas, n, opts)
	}
	canvas.Gend()

	canvas.End()
	return ew.err
}

func writeSVGNode(canvas *svg.SVG, n NodePrimitive, opts Options) {
	attrs := []string{
		attr("class", strings.Join(n.Classes, " ")),
		fmt.Sprintf(`tabindex="%d"`, n.TabIndex),
		fmt.Sprintf(`transform="translate(%.2f,%.2f) rotate(%.2f)"`, n.X, n.Y, n.Rotation),
	}
	if n.Hidden {
		attrs = append(attrs, `display="none"`)
	}
	canvas.Group(attrs...)
	canvas.Circle(0, 0, radius(n.Radius),
		attr("fill", n.Color),
		attr("stroke", n.Stroke),
		fmt.Sprintf(`stroke-width="%g"`, n.StrokeWidth),
		fmt.Sprintf(`opacity="%g"`, nodeOpacity),
		attr("data-node-id", n.ID))
	if n.GlowRadius > 0 {
		canvas.Circle(0, 0, radius(n.GlowRadius),
			`class="graph-node__glow"`,
			`fill="none"`,
			attr("stroke", n.Color),
			fmt.Sprintf(`stroke-width="%g"`, glowStroke),
			fmt.Sprintf(`opacity="%g"`, glowOpacity))
	}
	if opts.Labels && n.Label != "" {
		canvas.Text(0, px(n.LabelY), n.Label,
			`class="graph-node__label"`,
			`text-anchor="middle"`,
			`dominant-baseline="middle"`,
			"fill:#e6f1ff;font-size:12px;font-family:monospace")
	}
	canvas.Gend()
}

func canvasSize(f Frame) (int, int) {
	w, h := int(math.Round(f.Width)), int(math.Round(f.Height))
	if w <= 0 {
		w = 960
	}
	if h <= 0 {
		h = 560
	}
	return w, h
}

func px(v float64) int { return int(math.Round(v)) }

// radius never rounds a drawn circle away.
func radius(v float64) int {
	r := px(v)
	if r < 1 {
		return 1
	}
	return r
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, html.EscapeString(value))
}

// errWriter keeps the first write error, since svgo does not report them.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, err
}
