package model

// Layout and paint tables. These are fixed defaults, not configuration.

var nodeRadius = map[NodeType]float64{
	TypeHub:     18,
	TypeTopic:   12,
	TypeAsset:   10,
	TypeVendor:  9,
	TypeLibrary: 9,
	TypeEvent:   10,
}

var pulseScale = map[NodeType]float64{
	TypeHub:     1.85,
	TypeTopic:   1.7,
	TypeAsset:   1.65,
	TypeVendor:  1.6,
	TypeLibrary: 1.6,
	TypeEvent:   1.7,
}

var typeOffsetY = map[NodeType]float64{
	TypeHub:     0,
	TypeTopic:   -120,
	TypeAsset:   120,
	TypeVendor:  180,
	TypeLibrary: 220,
	TypeEvent:   -220,
}

var nodeColors = map[NodeType]string{
	TypeHub:     "#38f9d7",
	TypeTopic:   "#8c5bfa",
	TypeAsset:   "#ffb347",
	TypeVendor:  "#4db8ff",
	TypeLibrary: "#71d5ff",
	TypeEvent:   "#2ef2ff",
}

// specialColors overrides the per-type color for a handful of known ids.
var specialColors = map[string]string{
	"ext_community":      "#38f9d7",
	"ext_rules":          "#8c5bfa",
	"spaces":             "#ffb347",
	"ext_hashtag":        "#2ef2ff",
	"moderators":         "#ff5af1",
	"mod_bronzeagecto":   "#ffd166",
	"mod_money_illusion": "#06d6a0",
	"mod_theogcb405":     "#118ab2",
	"mod_k0ncept":        "#ef476f",
	"ext_github":         "#71d5ff",
}

var linkDistance = map[LinkKind]float64{
	KindBelongsTo: 250,
	KindRelates:   320,
	KindPoweredBy: 380,
}

var linkColors = map[LinkKind]string{
	KindBelongsTo: "rgba(56, 249, 215, 0.45)",
	KindRelates:   "rgba(140, 91, 250, 0.32)",
	KindPoweredBy: "rgba(113, 213, 255, 0.3)",
}

var linkWidths = map[LinkKind]float64{
	KindBelongsTo: 2.2,
	KindRelates:   1.6,
	KindPoweredBy: 1.2,
}

const (
	defaultRadius       = 9
	defaultPulseScale   = 1.7
	defaultLinkWidth    = 1.2
	defaultLinkDistance = 30

	HubCharge   = -160.0
	OtherCharge = -60.0

	// FocusRing strokes the focused node.
	FocusRing = "#C08A3E"
	// NodeStroke outlines unfocused nodes.
	NodeStroke = "#02060d"
	// BlurStroke outlines a node after it loses focus.
	BlurStroke = "rgba(10, 13, 22, 0.9)"
)

// Radius returns the base radius for a node type.
func Radius(t NodeType) float64 {
	if r, ok := nodeRadius[t]; ok {
		return r
	}
	return defaultRadius
}

// BaseCharge returns the resting repulsion strength for a node type.
func BaseCharge(t NodeType) float64 {
	if t == TypeHub {
		return HubCharge
	}
	return OtherCharge
}

// PulseScale returns the peak radius multiplier for a node type.
func PulseScale(t NodeType) float64 {
	if s, ok := pulseScale[t]; ok {
		return s
	}
	return defaultPulseScale
}

// TypeOffsetY returns the vertical bias of a node type relative to the
// viewport center. ok is false for unknown types.
func TypeOffsetY(t NodeType) (offset float64, ok bool) {
	offset, ok = typeOffsetY[t]
	return offset, ok
}

// TypeColor returns the fill color for a node type.
func TypeColor(t NodeType) string {
	return nodeColors[t]
}

// NodeColor returns the fill color for a specific node, honoring the id
// allow-list before falling back to the type color.
func NodeColor(id string, t NodeType) string {
	if c, ok := specialColors[id]; ok {
		return c
	}
	return nodeColors[t]
}

// LinkDistance returns the target length for a link kind.
func LinkDistance(k LinkKind) float64 {
	if d, ok := linkDistance[k]; ok {
		return d
	}
	return defaultLinkDistance
}

// LinkColor returns the stroke color for a link kind.
func LinkColor(k LinkKind) string {
	return linkColors[k]
}

// LinkWidth returns the stroke width for a link kind.
func LinkWidth(k LinkKind) float64 {
	if w, ok := linkWidths[k]; ok {
		return w
	}
	return defaultLinkWidth
}

// Focusable reports whether nodes of type t take part in tab order.
func Focusable(t NodeType) bool {
	return t == TypeHub || t == TypeAsset || t == TypeTopic
}
