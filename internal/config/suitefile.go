package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFile reads a single suite-variables YAML file. A missing file is
// reported as an *os.PathError; callers resolving a list of candidate
// config-file paths should decide per-path
// whether a missing file is tolerated.
func LoadFile(path string) (Map, error) {
	f, err := os.Open(path) //nolint:gosec // path is resolved from test-suite name, not arbitrary user input
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

// Load parses a suite-variables YAML document from r. The document must be
// a flat mapping of variable name to scalar value; a value that is itself a
// mapping or sequence fails to decode into the string it's assigned to and
// is reported as a parse error.
func Load(r io.Reader) (Map, error) {
	dec := yaml.NewDecoder(r)

	var raw map[string]string
	if err := dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return Map{}, nil
		}
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return Map(raw), nil
}

// LoadFiles loads and merges a list of suite-variables files in order,
// later files overriding earlier ones. A missing file in the list is
// skipped rather than treated as fatal, since config-file resolution by
// test-suite name may list candidates that don't all exist
// for every suite.
func LoadFiles(paths []string) (Map, error) {
	var layers []Map
	for _, p := range paths {
		m, err := LoadFile(p)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		layers = append(layers, m)
	}
	return Merge(layers...), nil
}
