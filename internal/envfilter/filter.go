// Package envfilter provides glob-based environment variable filtering for
// the case executor's child environment isolation:
// clearing locale variables and TZ from the inherited environment before
// imposing HOME, LANG, and LC_ALL.
package envfilter

import (
	"path"
	"strings"
)

// exemptNames lists environment variable names that are always exempt from
// deny filtering: the fixed triple the executor reimposes on every child
// regardless of what a deny-list pattern matches, so "LC_*"-style patterns
// can clear the rest of the locale family without also stripping the one
// LC_ALL value the executor is about to set anyway.
var exemptNames = []string{
	"HOME",
	"LANG",
	"LC_ALL",
}

// IsDenied returns true if the environment variable name matches any of the
// provided deny-list glob patterns. Uses path.Match for glob matching, which
// handles * wildcards correctly for non-path strings (env var names don't
// contain /). Returns false for invalid patterns (fail-open).
//
// An exempt variable (see IsExempt) is never denied regardless of patterns.
func IsDenied(name string, patterns []string) bool {
	if IsExempt(name) {
		return false
	}
	for _, pattern := range patterns {
		matched, err := path.Match(pattern, name)
		if err != nil {
			// invalid pattern: skip (fail-open)
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

// IsExempt returns true if name is one of the fixed variables the executor
// reimposes after filtering (HOME, LANG, LC_ALL), and so must never be
// treated as denied, even by a deny-all pattern.
func IsExempt(name string) bool {
	for _, n := range exemptNames {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}
