//go:build !windows

package hooks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoke_Success(t *testing.T) {
	dir := t.TempDir()
	hookPath := filepath.Join(dir, "atf-run.hooks")
	require.NoError(t, os.WriteFile(hookPath, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	r := &Runner{Shell: "/bin/sh", HookPath: hookPath}
	assert.NoError(t, r.Invoke(InfoStart))
}

func TestInvoke_FailurePropagates(t *testing.T) {
	dir := t.TempDir()
	hookPath := filepath.Join(dir, "atf-run.hooks")
	require.NoError(t, os.WriteFile(hookPath, []byte("#!/bin/sh\necho boom >&2\nexit 1\n"), 0o755))

	r := &Runner{Shell: "/bin/sh", HookPath: hookPath}
	err := r.Invoke(InfoEnd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestInvoke_ReceivesPointArgument(t *testing.T) {
	dir := t.TempDir()
	hookPath := filepath.Join(dir, "atf-run.hooks")
	require.NoError(t, os.WriteFile(hookPath, []byte(`#!/bin/sh
if [ "$1" != "info_start_hook" ]; then
  echo "wrong arg: $1" >&2
  exit 1
fi
exit 0
`), 0o755))

	r := &Runner{Shell: "/bin/sh", HookPath: hookPath}
	assert.NoError(t, r.Invoke(InfoStart))
}

func TestInvoke_MissingHookScriptIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	r := &Runner{Shell: "/bin/sh", HookPath: filepath.Join(dir, "no-such.hooks")}
	assert.NoError(t, r.Invoke(InfoStart))
}

func TestNewRunner_BuildsHookPath(t *testing.T) {
	r := NewRunner("/bin/sh", "/usr/share/atf", "atf-run")
	assert.Equal(t, "/usr/share/atf/atf-run.hooks", r.HookPath)
}
