package main

import (
	"fmt"

	"github.com/ormasoftchile/atf-run/internal/atfconfig"
	"github.com/spf13/cobra"
)

// runRoot prints the requested configuration keys (or all keys, sorted,
// when none are named).
func runRoot(cmd *cobra.Command, args []string) error {
	keys := args
	if len(keys) == 0 {
		keys = atfconfig.Keys()
	}

	out := cmd.OutOrStdout()
	for _, key := range keys {
		value, err := atfconfig.MustGet(key)
		if err != nil {
			return err
		}
		if terseOutput {
			fmt.Fprintln(out, value)
			continue
		}
		fmt.Fprintf(out, "%s : %s\n", key, value)
	}
	return nil
}
