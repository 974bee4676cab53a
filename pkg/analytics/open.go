package analytics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/hubgraph/pkg/config"
)

// Open builds the sinks named in cfg. pageURL is reported by the HTTP sink.
// No configured sinks yields an empty Multi.
func Open(cfg config.AnalyticsConfig, pageURL string) (Sink, error) {
	var sinks Multi
	fail := func(err error) (Sink, error) {
		sinks.Close()
		return nil, err
	}
	for _, name := range cfg.Sinks {
		switch name {
		case config.SinkLog:
			sinks = append(sinks, LogSink{})
		case config.SinkJSONL:
			if err := os.MkdirAll(filepath.Dir(cfg.JSONLPath), 0o755); err != nil {
				return fail(fmt.Errorf("create jsonl dir: %w", err))
			}
			f, err := os.OpenFile(cfg.JSONLPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return fail(fmt.Errorf("open jsonl sink: %w", err))
			}
			sinks = append(sinks, NewJSONLSink(f))
		case config.SinkSQLite:
			s, err := OpenSQLiteSink(cfg.SQLitePath)
			if err != nil {
				return fail(err)
			}
			sinks = append(sinks, s)
		case config.SinkHTTP:
			sinks = append(sinks, NewHTTPSink(HTTPOptions{
				Endpoint: cfg.Endpoint,
				Domain:   cfg.Domain,
				PageURL:  pageURL,
			}))
		default:
			return fail(fmt.Errorf("unknown analytics sink %q", name))
		}
	}
	return sinks, nil
}
