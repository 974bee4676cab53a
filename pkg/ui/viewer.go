// Package ui is the interactive terminal viewer: it ticks the layout, draws
// each frame onto a cell canvas and routes keys and mouse input to the
// interaction controller.
package ui

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
	"github.com/vanderheijden86/hubgraph/pkg/glyphs"
	"github.com/vanderheijden86/hubgraph/pkg/graph"
	"github.com/vanderheijden86/hubgraph/pkg/interact"
	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/render"
	"github.com/vanderheijden86/hubgraph/pkg/sim"
	"github.com/vanderheijden86/hubgraph/pkg/watcher"
)

const (
	headerLines = 1
	footerLines = 1

	statusTTL      = 3 * time.Second
	defaultTick    = 16 * time.Millisecond
	helpText       = "/ filter  1-6 legend  0 reset  tab focus  ←↑↓→ move  enter open  # jump  c copy  q quit"
	fallbackHeader = "Graph unavailable"
)

type inputMode int

const (
	modeNormal inputMode = iota
	modeFilter
	modeHash
)

type tickMsg time.Time

type fileChangedMsg struct{}

type reloadedMsg struct {
	data model.GraphData
	err  error
}

// Options configures the viewer.
type Options struct {
	Data    model.GraphData
	LoadErr error // shows the fallback screen when set

	Width, Height float64 // layout viewport; zero takes 960x560
	TickInterval  time.Duration
	Glyphs        bool
	ReducedMotion bool
	Focus         string // fragment focused on start

	Sink      interact.Sink
	Navigator interact.Navigator
	Watcher   *watcher.Watcher
	Reload    func(ctx context.Context) (model.GraphData, error)

	// Copy writes to the clipboard. Nil uses the system clipboard.
	Copy  func(string) error
	Clock func() time.Time
	Rand  *rand.Rand
}

// Model is the bubbletea model of the viewer.
type Model struct {
	opts  Options
	clock func() time.Time

	g     *graph.Graph
	sim   *sim.Simulation
	ctrl  *interact.Controller
	field *glyphs.Field
	start time.Time
	err   error

	width, height int

	mode  inputMode
	input textinput.Model

	press     string // node under the pointer at press
	pressX    int
	pressY    int
	dragging  bool
	status    string
	statusExp time.Time

	tips *tooltipRenderer
}

// New builds the viewer around an already loaded document.
func New(opts Options) Model {
	if opts.Width <= 0 {
		opts.Width = 960
	}
	if opts.Height <= 0 {
		opts.Height = 560
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTick
	}
	if opts.Copy == nil {
		opts.Copy = clipboard.WriteAll
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}

	ti := textinput.New()
	ti.CharLimit = 120

	m := Model{
		opts:  opts,
		clock: clock,
		input: ti,
		tips:  newTooltipRenderer(),
	}
	m.load(opts.Data, opts.LoadErr)
	if opts.Focus != "" && m.ctrl != nil {
		m.ctrl.FocusHash(opts.Focus, m.start)
	}
	return m
}

// load rebuilds every piece of state from a document, like a page reload.
func (m *Model) load(data model.GraphData, err error) {
	m.start = m.clock()
	m.err = err
	m.g, m.sim, m.ctrl = nil, nil, nil
	m.press, m.dragging = "", false

	if m.opts.Glyphs {
		m.field = glyphs.NewField(glyphs.Options{ReducedMotion: m.opts.ReducedMotion, Rand: m.opts.Rand, Start: m.start})
	}
	if err != nil {
		debug.Log("ui: document unavailable: %v", err)
		return
	}

	m.g = graph.Build(data, graph.Options{ReducedMotion: m.opts.ReducedMotion, Rand: m.opts.Rand})
	if m.g.Empty() {
		m.err = fmt.Errorf("document has no nodes")
		m.g = nil
		return
	}
	m.sim = sim.New(m.g, sim.Config{
		Width:         m.opts.Width,
		Height:        m.opts.Height,
		ReducedMotion: m.opts.ReducedMotion,
		Rand:          m.opts.Rand,
	})
	m.ctrl = interact.New(m.g, interact.Options{
		Sink:          m.opts.Sink,
		Navigator:     m.opts.Navigator,
		Simulation:    m.sim,
		ReducedMotion: m.opts.ReducedMotion,
		Clock:         m.clock,
	})
}

// Controller exposes the interaction state, nil on the fallback screen.
func (m Model) Controller() *interact.Controller { return m.ctrl }

// Simulation exposes the layout, nil on the fallback screen.
func (m Model) Simulation() *sim.Simulation { return m.sim }

// Failed reports whether the fallback screen is shown.
func (m Model) Failed() bool { return m.ctrl == nil }

// Status returns the current status line message.
func (m Model) Status() string { return m.status }

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.watchCmd())
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) watchCmd() tea.Cmd {
	w := m.opts.Watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		<-w.Changes()
		return fileChangedMsg{}
	}
}

func (m Model) reloadCmd() tea.Cmd {
	reload := m.opts.Reload
	if reload == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		data, err := reload(ctx)
		return reloadedMsg{data: data, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(10, msg.Width-4)
		return m, nil

	case tickMsg:
		m.advance(time.Time(msg))
		return m, m.tickCmd()

	case fileChangedMsg:
		m.setStatus("document changed, reloading")
		return m, tea.Batch(m.reloadCmd(), m.watchCmd())

	case reloadedMsg:
		if msg.err != nil {
			// Keep the current graph; a half-written file is common mid-save.
			m.setStatus("reload failed: " + msg.err.Error())
			return m, nil
		}
		m.load(msg.data, nil)
		m.setStatus("reloaded")
		return m, nil

	case tea.MouseMsg:
		m.handleMouse(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

// advance runs one frame: pulse pass, physics step, drift pass, highlight
// expiry and background reshuffles.
func (m *Model) advance(now time.Time) {
	if m.field != nil {
		m.field.Advance(now)
	}
	if !m.statusExp.IsZero() && !now.Before(m.statusExp) {
		m.status, m.statusExp = "", time.Time{}
	}
	if m.ctrl == nil {
		return
	}
	elapsed := now.Sub(m.start)
	m.g.ApplyPhysics(elapsed)
	m.sim.Step()
	m.g.ApplyDisplay(elapsed)
	m.ctrl.Expire(now)
}

func (m *Model) setStatus(s string) {
	m.status = s
	m.statusExp = m.clock().Add(statusTTL)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	switch m.mode {
	case modeFilter:
		return m.handleFilterKey(msg)
	case modeHash:
		return m.handleHashKey(msg)
	}

	if m.ctrl == nil {
		if msg.String() == "q" || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		return m, nil
	}

	switch s := msg.String(); s {
	case "q":
		return m, tea.Quit
	case "/":
		m.mode = modeFilter
		m.input.Prompt = "/ "
		m.input.Placeholder = "filter by label or tag"
		m.input.SetValue(m.ctrl.Filter())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "#":
		m.mode = modeHash
		m.input.Prompt = "# "
		m.input.Placeholder = "node id"
		m.input.SetValue("")
		return m, m.input.Focus()
	case "0":
		m.ctrl.ResetLegend()
	case "1", "2", "3", "4", "5", "6":
		t := model.AllNodeTypes[int(s[0]-'1')]
		on := m.ctrl.ToggleLegend(t)
		m.setStatus(fmt.Sprintf("%s %s", t, onOff(on)))
	case "c":
		m.copyFocused()
	default:
		if k, ok := controllerKey(msg); ok {
			if _, err := m.ctrl.Key(k); err != nil {
				m.setStatus(err.Error())
			}
		}
	}
	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	before := m.input.Value()
	m.input, cmd = m.input.Update(msg)
	if m.ctrl != nil && m.input.Value() != before {
		m.ctrl.SetFilter(m.input.Value())
	}
	return m, cmd
}

func (m Model) handleHashKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.mode = modeNormal
		m.input.Blur()
		frag := strings.TrimSpace(m.input.Value())
		if m.ctrl != nil && !m.ctrl.FocusHash(frag, m.clock()) && frag != "" {
			m.setStatus("no visible node #" + strings.TrimPrefix(frag, "#"))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) copyFocused() {
	n := m.g.Node(m.ctrl.Focused())
	if n == nil || n.Href == "" {
		m.setStatus("nothing to copy")
		return
	}
	if err := m.opts.Copy(n.Href); err != nil {
		m.setStatus("copy failed: " + err.Error())
		return
	}
	m.setStatus("copied " + n.Href)
}

func controllerKey(msg tea.KeyMsg) (interact.Key, bool) {
	switch msg.Type {
	case tea.KeyLeft:
		return interact.KeyArrowLeft, true
	case tea.KeyRight:
		return interact.KeyArrowRight, true
	case tea.KeyUp:
		return interact.KeyArrowUp, true
	case tea.KeyDown:
		return interact.KeyArrowDown, true
	case tea.KeyEnter:
		return interact.KeyEnter, true
	case tea.KeySpace:
		return interact.KeySpace, true
	case tea.KeyEsc:
		return interact.KeyEscape, true
	case tea.KeyTab:
		return interact.KeyTab, true
	case tea.KeyShiftTab:
		return interact.KeyShiftTab, true
	}
	return "", false
}

func onOff(on bool) string {
	if on {
		return "shown"
	}
	return "hidden"
}

// --- geometry --------------------------------------------------------------

func (m Model) canvasSize() (w, h int) {
	return max(0, m.width), max(0, m.height-headerLines-footerLines)
}

// toLayout maps a canvas cell to layout coordinates at the cell center.
func (m Model) toLayout(cx, cy int) (x, y float64) {
	w, h := m.canvasSize()
	if w == 0 || h == 0 {
		return 0, 0
	}
	return (float64(cx) + 0.5) / float64(w) * m.opts.Width, (float64(cy) + 0.5) / float64(h) * m.opts.Height
}

// toCell maps layout coordinates to a canvas cell.
func (m Model) toCell(x, y float64) (cx, cy int) {
	w, h := m.canvasSize()
	return int(x / m.opts.Width * float64(w)), int(y / m.opts.Height * float64(h))
}

// nodeAt returns the visible node drawn at or next to a canvas cell.
func (m Model) nodeAt(cx, cy int) string {
	if m.ctrl == nil {
		return ""
	}
	best, bestD := "", 2
	for _, id := range m.ctrl.VisibleIDs() {
		nx, ny := m.toCell(m.g.Node(id).Position())
		d := max(abs(nx-cx), abs(ny-cy))
		if d < bestD {
			best, bestD = id, d
		}
	}
	return best
}

// --- mouse -----------------------------------------------------------------

func (m *Model) handleMouse(msg tea.MouseMsg) {
	if m.ctrl == nil {
		return
	}
	cx, cy := msg.X, msg.Y-headerLines
	x, y := m.toLayout(cx, cy)

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		m.press, m.pressX, m.pressY, m.dragging = m.nodeAt(cx, cy), cx, cy, false
		if m.press != "" {
			m.ctrl.DragStart(m.press)
		}

	case tea.MouseActionMotion:
		if m.press != "" {
			if cx != m.pressX || cy != m.pressY {
				m.dragging = true
			}
			if m.dragging {
				m.ctrl.DragTo(m.press, x, y)
			}
			return
		}
		hit := m.nodeAt(cx, cy)
		if hit != m.ctrl.Hover() {
			if prev := m.ctrl.Hover(); prev != "" {
				m.ctrl.PointerLeave(prev)
			}
			if hit != "" {
				m.ctrl.PointerEnter(hit, x, y)
			}
		}

	case tea.MouseActionRelease:
		id := m.press
		m.press = ""
		if id == "" {
			return
		}
		m.ctrl.DragEnd(id)
		if !m.dragging {
			if err := m.ctrl.Click(id); err != nil {
				m.setStatus(err.Error())
			}
		}
		m.dragging = false
	}
}

// --- view ------------------------------------------------------------------

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "loading…"
	}
	if m.ctrl == nil {
		return m.fallbackView()
	}
	w, h := m.canvasSize()
	frame := render.Project(m.g, m.ctrl.State(), m.opts.Width, m.opts.Height)
	canvas := NewCanvas(w, h)
	m.drawFrame(canvas, frame)
	m.drawGlyphs(canvas)
	m.drawTooltip(canvas)
	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), canvas.Render(), m.footerView())
}

func (m Model) fallbackView() string {
	body := titleStyle.Render(fallbackHeader)
	if m.err != nil {
		body += "\n\n" + errorStyle.Render(m.err.Error())
	}
	body += "\n\n" + mutedStyle.Render("q quit")
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, fallbackStyle.Render(body))
}

func (m Model) headerView() string {
	parts := []string{titleStyle.Render("hubgraph")}
	for i, t := range model.AllNodeTypes {
		parts = append(parts, legendChip(fmt.Sprint(i+1), t, m.ctrl.LegendEnabled(t)))
	}
	if !m.ctrl.LegendResetDisabled() {
		parts = append(parts, keyStyle.Render("0")+mutedStyle.Render(" reset"))
	}
	if term := m.ctrl.Filter(); term != "" && m.mode != modeFilter {
		parts = append(parts, mutedStyle.Render("/")+textStyle.Render(term))
	}
	return truncateANSI(strings.Join(parts, "  "), m.width)
}

func (m Model) footerView() string {
	switch {
	case m.mode != modeNormal:
		return m.input.View()
	case m.status != "":
		return textStyle.Render(truncate(m.status, m.width))
	default:
		return mutedStyle.Render(truncate(helpText, m.width))
	}
}

// truncateANSI cuts a styled line to width cells.
func truncateANSI(s string, width int) string {
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
