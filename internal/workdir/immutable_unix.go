//go:build !windows

package workdir

import (
	"fmt"
	"os/exec"
)

// markImmutable attempts to set the filesystem "immutable" attribute
// (chflags on BSD-derived systems, chattr +i on Linux) on path. Neither
// tool is universally present or permitted for an unprivileged user, so
// failure here is expected and handled as a Diagnostic by the caller, not
// as an error that aborts workdir creation.
func markImmutable(path string) error {
	if _, err := exec.LookPath("chflags"); err == nil {
		return exec.Command("chflags", "uchg", path).Run()
	}
	if _, err := exec.LookPath("chattr"); err == nil {
		return exec.Command("chattr", "+i", path).Run()
	}
	return fmt.Errorf("no immutable-attribute tool available on this platform")
}
