// Package analytics turns interaction notifications into events and fans
// them out to pluggable backends: the debug log, a JSONL stream, a SQLite
// store and a Plausible-style HTTP endpoint.
package analytics

import (
	"time"

	"github.com/google/uuid"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
)

// Event names.
const (
	EventNodeClick  = "graph_node_click"
	EventNodeHover  = "graph_node_hover"
	EventFilterUsed = "graph_filter_used"
)

// Event is one notification with its identity and context.
type Event struct {
	ID      string            `json:"id"`
	Session string            `json:"session"`
	Name    string            `json:"name"`
	Time    time.Time         `json:"time"`
	Props   map[string]string `json:"props"`
}

// Sink is an event backend. Emit must not block the caller for long;
// slow backends queue.
type Sink interface {
	Emit(Event) error
	Close() error
}

// Notifier adapts interaction notifications onto a Sink. Emit failures are
// logged and dropped.
type Notifier struct {
	sink    Sink
	session string
	clock   func() time.Time
}

// NewNotifier starts a session that reports to sink.
func NewNotifier(sink Sink) *Notifier {
	return &Notifier{sink: sink, session: uuid.NewString(), clock: time.Now}
}

// Session returns the id shared by every event of this notifier.
func (n *Notifier) Session() string { return n.session }

// NodeClicked reports an activation.
func (n *Notifier) NodeClicked(id, label string) {
	n.emit(EventNodeClick, map[string]string{"id": id, "label": label})
}

// NodeHovered reports a pointer hover.
func (n *Notifier) NodeHovered(id, label string) {
	n.emit(EventNodeHover, map[string]string{"id": id, "label": label})
}

// FilterUsed reports a filter change with the term as typed.
func (n *Notifier) FilterUsed(term string) {
	n.emit(EventFilterUsed, map[string]string{"term": term})
}

func (n *Notifier) emit(name string, props map[string]string) {
	if n == nil || n.sink == nil {
		return
	}
	ev := Event{
		ID:      uuid.NewString(),
		Session: n.session,
		Name:    name,
		Time:    n.clock().UTC(),
		Props:   props,
	}
	if err := n.sink.Emit(ev); err != nil {
		debug.Log("analytics: %s dropped: %v", name, err)
	}
}

// Close closes the underlying sink.
func (n *Notifier) Close() error {
	if n == nil || n.sink == nil {
		return nil
	}
	return n.sink.Close()
}
