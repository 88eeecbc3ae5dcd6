package manifest

import (
	"io"
	"strings"
)

// TestCase is the per-case property map: descr, has.cleanup, use.fs,
// require.*, timeout, plus any unrecognized
// keys a test program chooses to report (preserved verbatim — validating
// the recognized subset is the requirements evaluator's job, not the
// parser's).
type TestCase struct {
	Name  string
	Props map[string]string
}

// Descr returns the case's free-form description, or "".
func (tc *TestCase) Descr() string { return tc.Props["descr"] }

// HasCleanup reports whether the case declares a cleanup phase.
func (tc *TestCase) HasCleanup() bool { return parseBoolProp(tc.Props["has.cleanup"]) }

// UseFS reports whether the case requires a writable workdir.
func (tc *TestCase) UseFS() bool { return parseBoolProp(tc.Props["use.fs"]) }

func parseBoolProp(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

// Metadata is the ordered mapping from test-case name to its property map,
// as reported by a test program's list invocation.
type Metadata struct {
	Program string
	Cases   []TestCase
}

// ParseTestCaseList parses a test-program case listing (the format emitted
// by a test program on stdout when invoked with a list flag). The header
// identifies the program; then one "ident: name" record begins a case,
// followed by zero or more "key: value" records for that case until a
// blank line. An empty list is syntactically valid here — the driver
// treats it as a runtime failure, not a parse error.
func ParseTestCaseList(r io.Reader) (*Metadata, error) {
	lr := newLineReader(r)
	if _, perr := readHeader(lr, "tp"); perr != nil {
		return nil, ParseErrors{perr}
	}

	md := &Metadata{}
	var errs errorList
	var current *TestCase

	flush := func() {
		if current != nil {
			md.Cases = append(md.Cases, *current)
			current = nil
		}
	}

	for {
		line, lineNo, ok := lr.next()
		if !ok {
			break
		}

		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}

		key, value, perr := splitKeyValue(line)
		if perr != "" {
			errs.add(lineNo, "%s", perr)
			lr.skipToBlank()
			flush()
			continue
		}

		if key == "ident" {
			flush()
			if value == "" {
				errs.add(lineNo, "ident record missing case name")
				lr.skipToBlank()
				continue
			}
			current = &TestCase{Name: value, Props: make(map[string]string)}
			continue
		}

		if current == nil {
			errs.add(lineNo, "property %q outside of any case (missing preceding ident record)", key)
			continue
		}
		current.Props[key] = value
	}
	flush()

	if err := errs.errOrNil(); err != nil {
		return nil, err
	}
	return md, nil
}

// splitKeyValue splits a "key: value" record. Returns a non-empty errMsg
// on malformed input.
func splitKeyValue(line string) (key, value, errMsg string) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", "malformed record: missing ':' separator"
	}
	key = strings.TrimSpace(line[:idx])
	value = strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", "malformed record: missing key"
	}
	return key, value, ""
}
