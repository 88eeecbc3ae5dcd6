package manifest

import (
	"io"
	"os"
	"strings"
)

// Atffile is a parsed suite manifest: the mapping from property name to
// value (notably "test-suite"), the list of test-program paths relative
// to the manifest directory, and the configuration file paths named by
// "conf" records.
type Atffile struct {
	Props     map[string]string
	TestProgs []string
	ConfFiles []string
}

// TestSuite returns the required "test-suite" property, or "" if absent
// (ParseAtffile already reports absence as a parse error, so callers that
// reach this point can assume non-empty unless they are working around a
// partially-failed parse).
func (a *Atffile) TestSuite() string {
	return a.Props["test-suite"]
}

// ParseAtffile parses a suite manifest (Atffile).
// Records are one of:
//
//	conf <path>          adds a configuration source path
//	tp <path>             adds a test-program path
//	prop <name> = <value> sets a suite-level property
//
// Property "test-suite" is required; its absence is reported as a parse
// error (not a panic) once the whole file has been scanned. All malformed
// records are accumulated: each record is a single line, so a malformed
// line is recorded with its line number and parsing resumes on the next
// line.
func ParseAtffile(r io.Reader) (*Atffile, error) {
	lr := newLineReader(r)
	if _, perr := readHeader(lr, "atffile"); perr != nil {
		return nil, ParseErrors{perr}
	}

	af := &Atffile{Props: make(map[string]string)}
	var errs errorList

	for {
		line, lineNo, ok := lr.next()
		if !ok {
			break
		}
		if isCommentOrBlank(line) {
			continue
		}

		fields := strings.SplitN(strings.TrimSpace(line), " ", 2)
		keyword := fields[0]
		rest := ""
		if len(fields) > 1 {
			rest = strings.TrimSpace(fields[1])
		}

		switch keyword {
		case "conf":
			if rest == "" {
				errs.add(lineNo, "conf record missing path")
				continue
			}
			af.ConfFiles = append(af.ConfFiles, rest)
		case "tp":
			if rest == "" {
				errs.add(lineNo, "tp record missing path")
				continue
			}
			af.TestProgs = append(af.TestProgs, rest)
		case "prop":
			name, value, perr := parsePropRecord(rest)
			if perr != "" {
				errs.add(lineNo, "%s", perr)
				continue
			}
			af.Props[name] = value
		default:
			errs.add(lineNo, "unknown record keyword %q", keyword)
		}
	}

	if _, ok := af.Props["test-suite"]; !ok {
		errs.add(0, `required property "test-suite" not set`)
	}

	if err := errs.errOrNil(); err != nil {
		return nil, err
	}
	return af, nil
}

// parsePropRecord splits "name = value" into its two parts. Returns a
// non-empty errMsg on malformed input.
func parsePropRecord(rest string) (name, value, errMsg string) {
	idx := strings.Index(rest, "=")
	if idx < 0 {
		return "", "", "prop record missing '=' separator"
	}
	name = strings.TrimSpace(rest[:idx])
	value = strings.TrimSpace(rest[idx+1:])
	if name == "" {
		return "", "", "prop record missing property name"
	}
	return name, value, ""
}

// ParseAtffileFile opens and parses path as an Atffile.
func ParseAtffileFile(path string) (*Atffile, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the driver, not untrusted input
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return ParseAtffile(f)
}
