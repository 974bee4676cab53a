package ui

import (
	"image/color"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/render"
)

// Palette for the chrome around the canvas.
var (
	ColorText   = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E6F1FF"}
	ColorMuted  = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#5C6A85"}
	ColorAccent = lipgloss.AdaptiveColor{Light: "#007A6C", Dark: "#38F9D7"}
	ColorFocus  = lipgloss.AdaptiveColor{Light: "#8A5A1E", Dark: "#C08A3E"}
	ColorDanger = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5A7A"}
	ColorBorder = lipgloss.AdaptiveColor{Light: "#C0C0C0", Dark: "#273149"}
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	mutedStyle = lipgloss.NewStyle().Foreground(ColorMuted)
	textStyle  = lipgloss.NewStyle().Foreground(ColorText)
	errorStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorDanger)
	keyStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorText)

	tooltipStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFocus).
			Padding(0, 1)

	fallbackStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(1, 3)
)

// legendChip renders the toggle for one node type.
func legendChip(key string, t model.NodeType, enabled bool) string {
	swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(model.TypeColor(t))).Render("●")
	label := string(t)
	if !enabled {
		return mutedStyle.Render(key + " ○ " + label)
	}
	return keyStyle.Render(key) + " " + swatch + " " + textStyle.Render(label)
}

// termColor flattens a style-table color onto the canvas background so
// terminals without alpha get the same visual weight.
func termColor(s string) string {
	return flatten(render.ParseColor(s), render.ParseColor(render.DefaultBackground))
}

// glyphColor tints a background glyph by its hue cycle and brightness.
func glyphColor(hue, brightness float64) string {
	return colorful.Hsv(hue, 0.55, 0.12+0.3*brightness).Clamped().Hex()
}

func flatten(fg, bg color.Color) string {
	// RGBA is premultiplied: out = fg + bg*(1-a).
	r, g, b, a := fg.RGBA()
	br, bgc, bb, _ := bg.RGBA()
	inv := float64(0xffff-a) / 0xffff
	mix := func(c, under uint32) float64 {
		v := (float64(c) + float64(under)*inv) / 0xffff
		if v > 1 {
			v = 1
		}
		return v
	}
	return colorful.Color{R: mix(r, br), G: mix(g, bgc), B: mix(b, bb)}.Hex()
}
