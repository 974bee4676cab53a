package render

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Format names an output encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

// FormatFor infers the encoding from a path extension, defaulting to SVG.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return FormatPNG
	}
	return FormatSVG
}

// ParseFormat validates an explicit format name. An empty name means infer
// from the output path.
func ParseFormat(name, path string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(name, "."))); f {
	case "":
		return FormatFor(path), nil
	case FormatSVG, FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported format %q (want svg or png)", name)
	}
}

// Save writes one frame to path, creating parent directories.
func Save(path string, format Format, f Frame, opts Options) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(file)

	switch format {
	case FormatPNG:
		err = WritePNG(bw, f, opts)
	default:
		err = WriteSVG(bw, f, opts)
	}
	if err == nil {
		err = bw.Flush()
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// FramePath returns the file name frame i is written to by ExportFrames.
func FramePath(dir string, i int, format Format) string {
	return filepath.Join(dir, fmt.Sprintf("frame-%04d.%s", i, format))
}

// ExportFrames writes frames to dir in parallel and returns the written paths
// in frame order.
func ExportFrames(ctx context.Context, frames []Frame, dir string, format Format, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create frame dir: %w", err)
	}

	paths := make([]string, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i := range frames {
		path := FramePath(dir, i, format)
		paths[i] = path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return Save(path, format, frames[i], opts)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}
