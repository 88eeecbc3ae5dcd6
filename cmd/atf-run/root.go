// Package main implements the atf-run Cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/ormasoftchile/atf-run/internal/diagnostic"
	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "atf-run [program-or-dir ...]",
	Short: "Run ATF test suites",
	Long: `atf-run - Automated Testing Framework test-suite runner

Discovers test programs declared in a suite's Atffile, spawns each test
case as an isolated child process, reconciles the reported outcome
against the observed exit status and signal, and emits a structured
event stream describing the run.

Without positional arguments, reads ./Atffile. Each positional argument
may name a test program directly or a directory containing a nested
Atffile.

Examples:
  # Run the suite rooted at ./Atffile
  atf-run

  # Run a specific test program with a config override
  atf-run -v unprivileged-user=tests bin/t_sanity`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runRoot,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits
	rootCmd.SetVersionTemplate(fmt.Sprintf("atf-run version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
	rootCmd.Flags().StringArrayVarP(&overrideFlags, "variable", "v", nil,
		"set a configuration variable: -v var=value (repeatable)")
}

func main() {
	if err := Execute(); err != nil {
		color := diagnostic.ResolveColor()
		fmt.Fprintf(os.Stderr, "%s %s\n", diagnostic.Bold(diagnostic.Red("atf-run:", color), color), err)
		os.Exit(1)
	}
}
