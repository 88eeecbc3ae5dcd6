//go:build windows

package workdir

import "fmt"

// markImmutable has no equivalent on Windows for a plain directory short
// of a full ACL rewrite, which is out of scope here; the read-only
// permission bits applied in MakeSharedRO are the enforcement mechanism on
// this platform, and the caller surfaces this as a one-time Diagnostic.
func markImmutable(path string) error {
	return fmt.Errorf("immutable attribute not supported on windows")
}
