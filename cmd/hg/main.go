// Command hg views and renders hub graph documents.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/hubgraph/pkg/config"
	"github.com/vanderheijden86/hubgraph/pkg/loader"
	"github.com/vanderheijden86/hubgraph/pkg/model"
	"github.com/vanderheijden86/hubgraph/pkg/version"
)

var (
	errColor  = color.New(color.FgRed)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
	dimColor  = color.New(color.FgHiBlack)
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		errColor.Fprintf(os.Stderr, "hg: %v\n", err)
		os.Exit(1)
	}
}

// app holds the flags shared by every subcommand.
type app struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "hg",
		Short: "Force-directed viewer for hub graph documents",
		Long: "hg lays out a hub graph document with a force simulation and shows it\n" +
			"in the terminal, or renders frames of the layout to SVG or PNG.",
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate("hg {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/hubgraph/config.yaml)")

	root.AddCommand(
		a.viewCmd(),
		a.renderCmd(),
		a.checkCmd(),
		a.initCmd(),
		versionCmd(),
	)
	return root
}

func (a *app) loadConfig() (config.Config, error) {
	if a.configPath != "" {
		return config.LoadFrom(a.configPath)
	}
	return config.Load()
}

func (a *app) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.ConfigPath()
}

// source picks the document named on the command line, else the configured
// one.
func source(args []string, cfg config.Config) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return cfg.DataURL
}

func fetch(ctx context.Context, cfg config.Config, src string) (model.GraphData, error) {
	return loader.Fetch(ctx, src, loader.Options{BaseURL: cfg.BaseURL})
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hg %s\n", version.Version)
		},
	}
}
