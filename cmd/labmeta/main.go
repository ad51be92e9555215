// Command labmeta prints metadata extracted from lab data files.
//
// Usage:
//
//	labmeta dump run-7/waveforms.tdms rig.ini
//	labmeta scan --include 'run-*' ./data
//	labmeta watch ./incoming
//	labmeta formats
//	labmeta version
//
// Settings come from an optional YAML file (--config) and LABMETA_*
// environment variables, e.g. LABMETA_LOG_LEVEL=debug.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonhull/labmeta"
	"github.com/simonhull/labmeta/internal/config"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger *slog.Logger

	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:          "labmeta",
		Short:        "Extract metadata from lab data files",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file path")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(a.dumpCmd(), a.scanCmd(), a.watchCmd(), a.formatsCmd(), a.versionCmd())
	return rootCmd
}

func (a *app) load() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	for _, w := range cfg.Validate() {
		fmt.Fprintf(a.stderr, "warning: %s\n", w)
	}

	a.cfg = cfg
	a.logger = cfg.Log.Logger(a.stderr)
	return nil
}

func (a *app) options(extra ...labmeta.Option) []labmeta.Option {
	return append(a.cfg.Options(a.logger), extra...)
}

func (a *app) formatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List routable file suffixes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, f := range labmeta.Formats() {
				fmt.Fprintf(a.stdout, "  %-6s %s\n", f.Extension(), f)
			}
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.stdout, labmeta.GetVersionInfo())
		},
	}
}
