package render

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"git.sr.ht/~sbinet/gg"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"
)

// WritePNG rasterizes f.
func WritePNG(w io.Writer, f Frame, opts Options) error {
	width, height := canvasSize(f)
	dc := gg.NewContext(width, height)

	bg := opts.Background
	if bg == "" {
		bg = DefaultBackground
	}
	dc.SetColor(ParseColor(bg))
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for _, l := range f.Links {
		if l.Hidden {
			continue
		}
		dc.SetColor(ParseColor(l.Color))
		dc.SetLineWidth(l.Width)
		dc.DrawLine(l.X1, l.Y1, l.X2, l.Y2)
		dc.Stroke()
	}

	for _, n := range f.Nodes {
		if n.Hidden {
			continue
		}
		drawNode(dc, n, opts)
	}

	return dc.EncodePNG(w)
}

func drawNode(dc *gg.Context, n NodePrimitive, opts Options) {
	fill := ParseColor(n.Color)

	dc.Push()
	dc.Translate(n.X, n.Y)
	dc.Rotate(gg.Radians(n.Rotation))

	if n.GlowRadius > 0 {
		dc.SetColor(withAlpha(fill, glowOpacity))
		dc.SetLineWidth(glowStroke)
		dc.DrawCircle(0, 0, n.GlowRadius)
		dc.Stroke()
	}

	dc.SetColor(withAlpha(fill, nodeOpacity))
	dc.DrawCircle(0, 0, n.Radius)
	dc.Fill()
	dc.SetColor(ParseColor(n.Stroke))
	dc.SetLineWidth(n.StrokeWidth)
	dc.DrawCircle(0, 0, n.Radius)
	dc.Stroke()

	if opts.Labels && n.Label != "" {
		dc.SetColor(color.RGBA{R: 0xe6, G: 0xf1, B: 0xff, A: 0xff})
		dc.DrawStringAnchored(n.Label, 0, n.LabelY, 0.5, 0.5)
	}
	dc.Pop()
}

// ParseColor understands the "#rrggbb" and "rgba(r, g, b, a)" forms used by
// the style tables. Anything else draws white.
func ParseColor(s string) color.Color {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "rgba(") {
		var r, g, b uint8
		var a float64
		if _, err := fmt.Sscanf(strings.ReplaceAll(s, " ", ""), "rgba(%d,%d,%d,%g)", &r, &g, &b, &a); err == nil {
			return withAlpha(color.RGBA{R: r, G: g, B: b, A: 0xff}, a)
		}
		return color.White
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.White
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

// withAlpha returns c scaled to opacity a, premultiplied as image/color
// expects.
func withAlpha(c color.Color, a float64) color.Color {
	r, g, b, _ := c.RGBA()
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	return color.RGBA64{
		R: uint16(float64(r) * a),
		G: uint16(float64(g) * a),
		B: uint16(float64(b) * a),
		A: uint16(0xffff * a),
	}
}
