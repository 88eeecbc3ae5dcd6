// Package requirements evaluates a test case's require.* properties against
// the host and the resolved configuration, deciding whether the case should
// be skipped before its body is ever spawned.
package requirements

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ormasoftchile/atf-run/internal/config"
)

// Host carries the values require.arch and require.machine are checked
// against. DefaultHost fills both fields from runtime.GOARCH; the kernel's
// reported machine type is not consulted. Tests substitute fixed values.
type Host struct {
	Arch    string
	Machine string
}

// DefaultHost returns the Host for the process's own platform.
func DefaultHost() Host {
	return Host{Arch: runtime.GOARCH, Machine: runtime.GOARCH}
}

// Checker evaluates require.* properties for one test case, in a fixed
// order; the first failing property wins and short-circuits the rest.
type Checker struct {
	Host        Host
	IsRoot      func() bool
	LookPath    func(string) (string, error)
	StatPath    func(string) error
}

// NewChecker builds a Checker wired to the real host and filesystem.
func NewChecker() *Checker {
	return &Checker{
		Host:     DefaultHost(),
		IsRoot:   func() bool { return os.Geteuid() == 0 },
		LookPath: exec.LookPath,
		StatPath: func(p string) error { _, err := os.Stat(p); return err },
	}
}

// Evaluate inspects props' require.* entries against c.Host and cfg. It
// returns an empty skip reason when the case may proceed, a non-empty skip
// reason when a requirement is unmet, and an error only for a malformed
// requirement value.
func (c *Checker) Evaluate(props map[string]string, cfg config.Map) (skipReason string, err error) {
	if v, ok := props["require.arch"]; ok {
		if !containsToken(v, c.Host.Arch) {
			return fmt.Sprintf("Requires one of: %s", v), nil
		}
	}
	if v, ok := props["require.machine"]; ok {
		if !containsToken(v, c.Host.Machine) {
			return fmt.Sprintf("Requires one of: %s", v), nil
		}
	}
	if v, ok := props["require.config"]; ok {
		for _, key := range fields(v) {
			if cfg[key] == "" {
				return fmt.Sprintf("Required config variable %s not defined", key), nil
			}
		}
	}
	if v, ok := props["require.files"]; ok {
		for _, path := range fields(v) {
			if !filepath.IsAbs(path) {
				return "", fmt.Errorf("require.files entry %q must be an absolute path", path)
			}
			if err := c.StatPath(path); err != nil {
				return fmt.Sprintf("Required file %s not found", path), nil
			}
		}
	}
	if v, ok := props["require.progs"]; ok {
		for _, prog := range fields(v) {
			if strings.Contains(prog, "/") && !filepath.IsAbs(prog) {
				return "", fmt.Errorf("require.progs entry %q must be an absolute path or a bare name", prog)
			}
			if filepath.IsAbs(prog) {
				if err := c.StatPath(prog); err != nil {
					return fmt.Sprintf("Required program %s not found", prog), nil
				}
				continue
			}
			if _, err := c.LookPath(prog); err != nil {
				return fmt.Sprintf("Required program %s not found", prog), nil
			}
		}
	}
	if v, ok := props["require.user"]; ok {
		switch v {
		case "root":
			if !c.IsRoot() {
				return "Requires root privileges", nil
			}
		case "unprivileged":
			if c.IsRoot() {
				return "Must not be run as root", nil
			}
		default:
			return "", fmt.Errorf("require.user: unrecognized value %q, want root or unprivileged", v)
		}
	}
	return "", nil
}

func fields(s string) []string {
	return strings.Fields(s)
}

func containsToken(list, want string) bool {
	for _, tok := range fields(list) {
		if tok == want {
			return true
		}
	}
	return false
}
