package manifest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// lineReader is the shared line tokenizer consumed by both record-level
// parsers in this package (ParseAtffile and ParseTestCaseList). It exists
// so the two formats share header validation and line-numbered iteration
// through composition rather than a shared base type — see DESIGN.md,
// "Polymorphic parsers".
type lineReader struct {
	sc     *bufio.Scanner
	lineNo int
	done   bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{sc: bufio.NewScanner(r)}
}

// next returns the next raw line (comments and surrounding whitespace not
// stripped) and its 1-based line number, or ok=false at EOF.
func (lr *lineReader) next() (line string, lineNo int, ok bool) {
	if lr.done {
		return "", 0, false
	}
	if !lr.sc.Scan() {
		lr.done = true
		return "", 0, false
	}
	lr.lineNo++
	return lr.sc.Text(), lr.lineNo, true
}

// skipToBlank discards lines until (and including) the next blank line or
// EOF. Used for error recovery: on a malformed record, the parser skips to
// the next record boundary and continues accumulating errors instead of
// aborting.
func (lr *lineReader) skipToBlank() {
	for {
		line, _, ok := lr.next()
		if !ok {
			return
		}
		if strings.TrimSpace(line) == "" {
			return
		}
	}
}

var headerPattern = regexp.MustCompile(`^Content-Type:\s*application/X-atf-([a-z-]+);\s*version="(\d+)"\s*$`)

// header is the parsed first line common to both formats.
type header struct {
	Format  string
	Version string
}

// readHeader consumes the mandatory first non-comment, non-blank line and
// validates it against the expected format name. It does not enforce a
// specific version; callers that care can compare header.Version.
func readHeader(lr *lineReader, expectFormat string) (header, *ParseError) {
	for {
		line, lineNo, ok := lr.next()
		if !ok {
			return header{}, &ParseError{Line: lineNo + 1, Message: "missing Content-Type header"}
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		m := headerPattern.FindStringSubmatch(trimmed)
		if m == nil {
			return header{}, &ParseError{Line: lineNo, Message: fmt.Sprintf("malformed Content-Type header: %q", trimmed)}
		}
		if m[1] != expectFormat {
			return header{}, &ParseError{Line: lineNo, Message: fmt.Sprintf("unexpected format %q, expected %q", m[1], expectFormat)}
		}
		return header{Format: m[1], Version: m[2]}, nil
	}
}

// isCommentOrBlank reports whether a raw line should be skipped entirely:
// empty (after trimming) or a '#' comment.
func isCommentOrBlank(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || strings.HasPrefix(t, "#")
}
