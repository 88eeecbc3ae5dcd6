// Package hooks invokes the installation-defined lifecycle scripts the
// driver runs before the first event and after the last. A hook script
// is named "<tool>.hooks" and is interpreted by the shell named in
// ATF_SHELL.
package hooks

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// Point identifies which lifecycle hook is being invoked.
type Point string

const (
	InfoStart Point = "info_start_hook"
	InfoEnd   Point = "info_end_hook"
)

// Runner invokes a tool's hook script with a given shell interpreter.
type Runner struct {
	Shell     string // ATF_SHELL
	HookPath  string // path to "<tool>.hooks"
}

// NewRunner builds a Runner for the given tool name, resolving its hook
// script under pkgdatadir (ATF_PKGDATADIR).
func NewRunner(shell, pkgdatadir, tool string) *Runner {
	return &Runner{
		Shell:    shell,
		HookPath: pkgdatadir + "/" + tool + ".hooks",
	}
}

// Invoke runs the hook script with point as its sole argument. Hook
// failure is fatal: a non-nil error here must abort the run after
// closing any open event scopes. No hook script installed for
// this tool is not a failure — it is the common case when nothing has
// been configured to run at start/end of the suite — so a missing
// HookPath is silently skipped.
func (r *Runner) Invoke(point Point) error {
	if _, err := os.Stat(r.HookPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	cmd := exec.Command(r.Shell, r.HookPath, string(point))
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("hook %s(%s) failed: %w: %s", r.HookPath, point, err, out)
	}
	return nil
}
