package ui

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/vanderheijden86/hubgraph/pkg/debug"
)

// Navigator follows node hrefs from the terminal. External links open in
// the system browser; internal ones are resolved against BaseURL first.
type Navigator struct {
	BaseURL string
	// Open launches a URL. Nil uses the platform opener.
	Open func(target string) error
	// Visited is told every URL that was opened.
	Visited func(target string)
}

func (n Navigator) OpenExternal(href string) error {
	return n.open(href)
}

func (n Navigator) Navigate(href string) error {
	target, err := n.resolve(href)
	if err != nil {
		return err
	}
	return n.open(target)
}

func (n Navigator) resolve(href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href %q: %w", href, err)
	}
	if ref.IsAbs() {
		return href, nil
	}
	if n.BaseURL == "" {
		return "", fmt.Errorf("cannot open %q: no base_url configured", href)
	}
	base, err := url.Parse(n.BaseURL)
	if err != nil {
		return "", fmt.Errorf("parse base_url %q: %w", n.BaseURL, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func (n Navigator) open(target string) error {
	debug.Log("navigator: open %s", target)
	open := n.Open
	if open == nil {
		open = systemOpen
	}
	if err := open(target); err != nil {
		return err
	}
	if n.Visited != nil {
		n.Visited(target)
	}
	return nil
}

func systemOpen(target string) error {
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		return fmt.Errorf("refusing to open non-web URL %q", target)
	}
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		if _, err := exec.LookPath("xdg-open"); err != nil {
			return fmt.Errorf("xdg-open not found in PATH")
		}
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
