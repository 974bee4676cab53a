package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanderheijden86/hubgraph/pkg/config"
)

func (a *app) initCmd() *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file",
		Long: "Ask for the document location, motion preference and analytics sinks and\n" +
			"write them to the config file. An existing file is used as the starting\n" +
			"point. --defaults writes without asking.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configFile()
			if path == "" {
				return fmt.Errorf("cannot determine config directory")
			}
			cfg := config.DefaultConfig()
			if _, err := os.Stat(path); err == nil {
				existing, err := config.LoadFrom(path)
				if err != nil {
					warnColor.Fprintf(cmd.ErrOrStderr(), "hg: ignoring unreadable %s: %v\n", path, err)
				} else {
					cfg = existing
				}
			}

			if !defaults {
				if err := newInitForm(&cfg).Run(); err != nil {
					return err
				}
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.SaveTo(cfg, path); err != nil {
				return err
			}
			okColor.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "write without prompting")
	return cmd
}

// newInitForm edits cfg in place. It falls back to accessible prompts when
// stdin is not a terminal.
func newInitForm(cfg *config.Config) *huh.Form {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Graph document").
				Description("File path or http(s) URL of graph.json").
				Value(&cfg.DataURL),
			huh.NewInput().
				Title("Base URL (optional)").
				Description("Resolves relative document paths and internal links").
				Validate(validBaseURL).
				Value(&cfg.BaseURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reduced motion").
				Options(
					huh.NewOption("Auto (narrow terminal, few CPUs, NO_MOTION)", config.MotionAuto),
					huh.NewOption("Always", config.MotionOn),
					huh.NewOption("Never", config.MotionOff),
				).
				Value(&cfg.ReducedMotion),
			huh.NewConfirm().
				Title("Show background glyphs?").
				Value(&cfg.UI.Glyphs),
		),
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Analytics sinks").
				Description("Where node clicks, hovers and filter use are reported").
				Options(huh.NewOptions(config.SinkLog, config.SinkJSONL, config.SinkSQLite, config.SinkHTTP)...).
				Value(&cfg.Analytics.Sinks),
			huh.NewInput().
				Title("Analytics domain").
				Description("Required by the http sink").
				Value(&cfg.Analytics.Domain),
		),
	).WithTheme(huh.ThemeDracula())
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		form = form.WithAccessible(true)
	}
	return form
}

func validBaseURL(s string) error {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if !u.IsAbs() {
		return fmt.Errorf("base URL must be absolute")
	}
	return nil
}
