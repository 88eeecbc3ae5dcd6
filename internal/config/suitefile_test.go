package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FlatMapping(t *testing.T) {
	input := "arch: amd64\nmachine: x86_64\n"
	m, err := Load(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, Map{"arch": "amd64", "machine": "x86_64"}, m)
}

func TestLoad_RejectsNestedValue(t *testing.T) {
	input := "arch:\n  nested: true\n"
	_, err := Load(strings.NewReader(input))
	require.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	m, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestLoadFiles_SkipsMissing(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.yaml")
	require.NoError(t, writeFile(p1, "x: 1\n"))

	m, err := LoadFiles([]string{p1, filepath.Join(dir, "missing.yaml")})
	require.NoError(t, err)
	assert.Equal(t, Map{"x": "1"}, m)
}

func TestLoadFiles_LaterOverrides(t *testing.T) {
	dir := t.TempDir()
	p1 := filepath.Join(dir, "a.yaml")
	p2 := filepath.Join(dir, "b.yaml")
	require.NoError(t, writeFile(p1, "x: 1\n"))
	require.NoError(t, writeFile(p2, "x: 2\n"))

	m, err := LoadFiles([]string{p1, p2})
	require.NoError(t, err)
	assert.Equal(t, Map{"x": "2"}, m)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
