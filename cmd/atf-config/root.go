// Package main implements the atf-config Cobra command tree: the
// installation-configuration query tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version, Commit, and Date are set at build time via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// terseOutput implements the "-t" flag: values only, no "key : " prefix.
var terseOutput bool

var rootCmd = &cobra.Command{
	Use:   "atf-config [key ...]",
	Short: "Query installation-baked ATF configuration values",
	Long: `atf-config - query installation-baked configuration values

With no arguments, prints every recognized key and its effective value
as "key : value" pairs, one per line, sorted by key. With arguments,
prints only the requested keys in the order given. An unknown key is a
fatal error. -t suppresses the "key : " prefix and prints values only.`,
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
	rootCmd.SetVersionTemplate(fmt.Sprintf("atf-config version {{.Version}} (commit: %s, built: %s)\n", Commit, Date))
	rootCmd.Flags().BoolVarP(&terseOutput, "terse", "t", false, "print values only, no \"key : \" prefix")
}

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "atf-config: %s\n", err)
		os.Exit(1)
	}
}
