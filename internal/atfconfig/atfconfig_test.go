package atfconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_DefaultWhenUnset(t *testing.T) {
	v, ok := Get("shell")
	require.True(t, ok)
	assert.Equal(t, "/bin/sh", v)
}

func TestGet_EnvOverridesDefault(t *testing.T) {
	t.Setenv("ATF_SHELL", "/bin/bash")
	v, ok := Get("shell")
	require.True(t, ok)
	assert.Equal(t, "/bin/bash", v)
}

func TestGet_UnknownKey(t *testing.T) {
	_, ok := Get("bogus")
	assert.False(t, ok)
}

func TestMustGet_UnknownKeyIsFatal(t *testing.T) {
	_, err := MustGet("bogus")
	require.Error(t, err)
	var target *ErrUnknownKey
	require.ErrorAs(t, err, &target)
}

func TestGetAll_IncludesAllKeys(t *testing.T) {
	all := GetAll()
	assert.Contains(t, all, "workdir")
	assert.Contains(t, all, "shell")
	assert.Contains(t, all, "pkgdatadir")
}

func TestKeys_SortedOrder(t *testing.T) {
	keys := Keys()
	assert.Equal(t, []string{"pkgdatadir", "shell", "workdir"}, keys)
}
