package interact

// Sink receives the notifications an analytics collaborator cares about.
// Implementations must not block.
type Sink interface {
	NodeClicked(id, label string)
	NodeHovered(id, label string)
	FilterUsed(term string)
}

// Navigator performs activation of a node's href.
type Navigator interface {
	// OpenExternal opens an off-site link somewhere other than the current
	// view.
	OpenExternal(href string) error
	// Navigate replaces the current view with an internal href.
	Navigate(href string) error
}

// Simulation is the part of the force engine the controller drives.
type Simulation interface {
	Reheat(alpha float64)
	DragStart(id string) bool
	DragTo(id string, x, y float64) bool
	DragEnd(id string) bool
}

type nopSink struct{}

func (nopSink) NodeClicked(string, string) {}
func (nopSink) NodeHovered(string, string) {}
func (nopSink) FilterUsed(string)          {}

type nopNavigator struct{}

func (nopNavigator) OpenExternal(string) error { return nil }
func (nopNavigator) Navigate(string) error     { return nil }

type nopSimulation struct{}

func (nopSimulation) Reheat(float64)                       {}
func (nopSimulation) DragStart(string) bool                { return false }
func (nopSimulation) DragTo(string, float64, float64) bool { return false }
func (nopSimulation) DragEnd(string) bool                  { return false }
