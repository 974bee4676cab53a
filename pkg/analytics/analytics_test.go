package analytics

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/hubgraph/pkg/config"
)

func fixedNotifier(sink Sink) *Notifier {
	n := NewNotifier(sink)
	n.clock = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return n
}

func TestNotifier_Events(t *testing.T) {
	rec := &Recorder{}
	n := fixedNotifier(rec)

	n.NodeClicked("hub", "Hub")
	n.NodeHovered("t1", "Topic")
	n.FilterUsed("  Alpha ")

	evs := rec.Events()
	if len(evs) != 3 {
		t.Fatalf("expected 3 events, got %d", len(evs))
	}
	wantNames := []string{EventNodeClick, EventNodeHover, EventFilterUsed}
	seen := map[string]bool{}
	for i, ev := range evs {
		if ev.Name != wantNames[i] {
			t.Errorf("event %d: name %q, want %q", i, ev.Name, wantNames[i])
		}
		if ev.Session != n.Session() {
			t.Errorf("event %d: session %q, want %q", i, ev.Session, n.Session())
		}
		if ev.ID == "" || seen[ev.ID] {
			t.Errorf("event %d: id %q missing or repeated", i, ev.ID)
		}
		seen[ev.ID] = true
	}
	if evs[0].Props["id"] != "hub" || evs[0].Props["label"] != "Hub" {
		t.Errorf("click props = %v", evs[0].Props)
	}
	if evs[2].Props["term"] != "  Alpha " {
		t.Errorf("filter term should be raw, got %q", evs[2].Props["term"])
	}

	if err := n.Close(); err != nil || !rec.Closed() {
		t.Errorf("Close: err=%v closed=%v", err, rec.Closed())
	}
}

func TestNotifier_NilSafe(t *testing.T) {
	var n *Notifier
	n.NodeClicked("a", "b")
	if err := n.Close(); err != nil {
		t.Errorf("nil notifier Close = %v", err)
	}
	NewNotifier(nil).FilterUsed("x")
}

func TestJSONLSink(t *testing.T) {
	var buf bytes.Buffer
	n := fixedNotifier(NewJSONLSink(&buf))
	n.NodeClicked("hub", "Hub")
	n.FilterUsed("q")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	var ev Event
	if err := json.Unmarshal([]byte(lines[0]), &ev); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if ev.Name != EventNodeClick || ev.Props["id"] != "hub" {
		t.Errorf("decoded %+v", ev)
	}
	if !ev.Time.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("time = %v", ev.Time)
	}
}

type failingSink struct{ closed bool }

func (f *failingSink) Emit(Event) error { return errors.New("boom") }

func (f *failingSink) Close() error {
	f.closed = true
	return nil
}

func TestMulti(t *testing.T) {
	rec := &Recorder{}
	bad := &failingSink{}
	m := Multi{bad, rec}

	if err := m.Emit(Event{Name: "x"}); err == nil {
		t.Error("expected joined error from failing sink")
	}
	if len(rec.Events()) != 1 {
		t.Error("a failing sink must not stop delivery to the others")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if !bad.closed || !rec.Closed() {
		t.Error("Close must reach every sink")
	}
}

func TestSQLiteSink(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store", "events.db")
	s, err := OpenSQLiteSink(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	n := fixedNotifier(s)
	n.NodeHovered("a", "Alpha")
	n.NodeHovered("b", "Beta")
	n.NodeClicked("a", "Alpha")

	ctx := context.Background()
	hovers, err := s.Events(ctx, EventNodeHover)
	if err != nil {
		t.Fatalf("Events: %v", err)
	}
	if len(hovers) != 2 {
		t.Fatalf("expected 2 hover events, got %d", len(hovers))
	}
	if hovers[0].Props["id"] != "a" || hovers[1].Props["id"] != "b" {
		t.Errorf("hover order/props wrong: %+v", hovers)
	}
	if hovers[0].Session != n.Session() {
		t.Errorf("session not stored")
	}

	counts, err := s.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[EventNodeHover] != 2 || counts[EventNodeClick] != 1 {
		t.Errorf("counts = %v", counts)
	}

	all, _ := s.Events(ctx, "")
	if len(all) != 3 {
		t.Errorf("expected 3 events total, got %d", len(all))
	}
}

func TestSQLiteSink_DuplicateID(t *testing.T) {
	s, err := OpenSQLiteSink(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ev := Event{ID: "same", Session: "s", Name: "n", Time: time.Now()}
	if err := s.Emit(ev); err != nil {
		t.Fatal(err)
	}
	if err := s.Emit(ev); err == nil {
		t.Error("expected primary key violation")
	}
}

type capture struct {
	mu     sync.Mutex
	bodies []plausibleEvent
	agents []string
}

func (c *capture) handler(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	var ev plausibleEvent
	if err := json.Unmarshal(data, &ev); err != nil || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	c.mu.Lock()
	c.bodies = append(c.bodies, ev)
	c.agents = append(c.agents, r.Header.Get("User-Agent"))
	c.mu.Unlock()
	w.WriteHeader(http.StatusAccepted)
}

func TestHTTPSink_Posts(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	s := NewHTTPSink(HTTPOptions{
		Endpoint: srv.URL + "/api/event",
		Domain:   "example.com",
		PageURL:  "https://example.com/hub",
		Client:   srv.Client(),
	})
	n := fixedNotifier(s)
	n.NodeClicked("hub", "Hub")
	n.FilterUsed("vendor")

	// Close drains the queue.
	if err := n.Close(); err != nil {
		t.Fatal(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.bodies) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(c.bodies))
	}
	first := c.bodies[0]
	if first.Name != EventNodeClick || first.Domain != "example.com" || first.URL != "https://example.com/hub" {
		t.Errorf("unexpected body %+v", first)
	}
	if first.Props["id"] != "hub" || first.Props["session"] != n.Session() {
		t.Errorf("props = %v", first.Props)
	}
	if c.agents[0] != "hubgraph" {
		t.Errorf("user agent = %q", c.agents[0])
	}
}

func TestHTTPSink_DropsWhenFull(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()

	s := NewHTTPSink(HTTPOptions{Endpoint: srv.URL, Domain: "d", QueueSize: 1, Client: srv.Client()})

	// The worker takes at most one event off the queue and blocks on the
	// server, so one of these must overflow the single slot.
	var full bool
	for i := 0; i < 3; i++ {
		if err := s.Emit(Event{Name: "x"}); errors.Is(err, ErrQueueFull) {
			full = true
		}
	}
	if !full {
		t.Error("expected ErrQueueFull once the queue is saturated")
	}
	close(release)
	s.Close()

	if err := s.Emit(Event{Name: "late"}); !errors.Is(err, ErrClosed) {
		t.Errorf("emit after close = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := config.AnalyticsConfig{
		Sinks:      []string{config.SinkLog, config.SinkJSONL, config.SinkSQLite},
		JSONLPath:  filepath.Join(dir, "a", "events.jsonl"),
		SQLitePath: filepath.Join(dir, "b", "events.db"),
	}
	sink, err := Open(cfg, "")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	m, ok := sink.(Multi)
	if !ok || len(m) != 3 {
		t.Fatalf("expected a Multi of 3 sinks, got %T %v", sink, sink)
	}
	if err := sink.Emit(Event{ID: "1", Name: "x", Time: time.Now()}); err != nil {
		t.Errorf("Emit: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}

	if _, err := Open(config.AnalyticsConfig{Sinks: []string{"carrier-pigeon"}}, ""); err == nil {
		t.Error("expected error for unknown sink")
	}
}
