package analytics

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
)

// ErrQueueFull is returned when the HTTP sink drops an event.
var ErrQueueFull = errors.New("analytics queue full")

// ErrClosed is returned for events emitted after Close.
var ErrClosed = errors.New("analytics sink closed")

const defaultTimeout = 5 * time.Second

// HTTPOptions configures an HTTPSink.
type HTTPOptions struct {
	// Endpoint receives POSTed events, e.g. https://plausible.io/api/event.
	Endpoint string
	// Domain is the site the events are attributed to.
	Domain string
	// PageURL is reported as the event url.
	PageURL string
	// UserAgent is sent with each request.
	UserAgent string
	// QueueSize bounds buffered events. Defaults to 64.
	QueueSize int
	Client    *http.Client
}

type plausibleEvent struct {
	Name   string            `json:"name"`
	URL    string            `json:"url"`
	Domain string            `json:"domain"`
	Props  map[string]string `json:"props,omitempty"`
}

// HTTPSink posts events in the Plausible events API shape from a
// background goroutine. Emit never blocks; events beyond the queue are
// dropped.
type HTTPSink struct {
	opts  HTTPOptions
	queue chan Event
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewHTTPSink starts the sender.
func NewHTTPSink(opts HTTPOptions) *HTTPSink {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: defaultTimeout}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "hubgraph"
	}
	s := &HTTPSink{
		opts:  opts,
		queue: make(chan Event, opts.QueueSize),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *HTTPSink) Emit(ev Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	select {
	case s.queue <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *HTTPSink) run() {
	defer close(s.done)
	for ev := range s.queue {
		if err := s.post(ev); err != nil {
			debug.Log("analytics: post %s: %v", ev.Name, err)
		}
	}
}

func (s *HTTPSink) post(ev Event) error {
	props := make(map[string]string, len(ev.Props)+1)
	for k, v := range ev.Props {
		props[k] = v
	}
	props["session"] = ev.Session

	body, err := json.Marshal(plausibleEvent{
		Name:   ev.Name,
		URL:    s.opts.PageURL,
		Domain: s.opts.Domain,
		Props:  props,
	})
	if err != nil {
		return err
	}

	timeout := s.opts.Client.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.opts.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", s.opts.UserAgent)

	resp, err := s.opts.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s returned %s", s.opts.Endpoint, resp.Status)
	}
	return nil
}

// Close stops accepting events and waits for queued ones to be sent.
func (s *HTTPSink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.queue)
	s.mu.Unlock()

	<-s.done
	return nil
}
