package metrics

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRecordStats(t *testing.T) {
	m := newTimingMetric("test")
	m.Record(2 * time.Millisecond)
	m.Record(4 * time.Millisecond)
	m.Record(3 * time.Millisecond)

	s := m.Stats()
	if s.Count != 3 || s.TotalMs != 9 || s.AvgMs != 3 || s.MinMs != 2 || s.MaxMs != 4 {
		t.Errorf("stats = %+v", s)
	}
	m.Reset()
	if m.Count() != 0 || m.Stats().MaxMs != 0 {
		t.Error("reset did not clear")
	}
}

func TestRecordConcurrent(t *testing.T) {
	m := newTimingMetric("concurrent")
	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(d time.Duration) {
			defer wg.Done()
			m.Record(d)
		}(time.Duration(i) * time.Microsecond)
	}
	wg.Wait()
	s := m.Stats()
	if s.Count != 50 || s.MinMs != 0.001 || s.MaxMs != 0.05 {
		t.Errorf("stats = %+v", s)
	}
}

func TestDisabledSkipsRecording(t *testing.T) {
	SetEnabled(false)
	defer SetEnabled(true)
	m := newTimingMetric("off")
	m.Record(time.Millisecond)
	Timer(m)()
	if m.Count() != 0 {
		t.Errorf("count = %d", m.Count())
	}
}

func TestReportListsMetricsWithData(t *testing.T) {
	SetEnabled(true)
	ResetAll()
	defer ResetAll()
	SimTick.Record(time.Millisecond)

	var buf bytes.Buffer
	if err := WriteReport(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "sim_tick") {
		t.Errorf("report missing sim_tick:\n%s", out)
	}
	if strings.Contains(out, "render_frame") {
		t.Errorf("report lists empty metric:\n%s", out)
	}
}
