package main

import (
	"os"

	"github.com/ormasoftchile/atf-run/internal/atfconfig"
	"github.com/ormasoftchile/atf-run/internal/config"
	"github.com/ormasoftchile/atf-run/internal/driver"
	"github.com/ormasoftchile/atf-run/internal/event"
	"github.com/ormasoftchile/atf-run/internal/hooks"
	"github.com/spf13/cobra"
)

// overrideFlags accumulates repeated "-v var=value" command-line overrides.
var overrideFlags []string

// runRoot wires the installation-baked configuration (atfconfig), the
// lifecycle hooks, and the event writer into a driver.Driver, then runs
// the suite rooted at args (or ./Atffile when args is empty).
func runRoot(cmd *cobra.Command, args []string) error {
	overrides, err := config.ParseOverrides(overrideFlags)
	if err != nil {
		return err
	}

	workdirRoot, _ := atfconfig.Get("workdir")
	shell, _ := atfconfig.Get("shell")
	pkgdatadir, _ := atfconfig.Get("pkgdatadir")

	w, err := event.NewWriter(cmd.OutOrStdout())
	if err != nil {
		return err
	}

	d := driver.New(driver.Options{
		Targets:     args,
		Overrides:   overrides,
		WorkdirRoot: workdirRoot,
		Pkgdatadir:  pkgdatadir,
		Hooks:       hooks.NewRunner(shell, pkgdatadir, "atf-run"),
	}, w)

	ok, err := d.Run(cmd.Context())
	if err != nil {
		return err
	}
	if !ok {
		// Case and program failures are already described by the event
		// stream; signal the non-zero exit without an extra stderr
		// diagnostic.
		os.Exit(1)
	}
	return nil
}
