package envfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsDenied_PrefixWildcard(t *testing.T) {
	patterns := []string{"LC_*"}
	assert.True(t, IsDenied("LC_COLLATE", patterns))
	assert.True(t, IsDenied("LC_NUMERIC", patterns))
	assert.False(t, IsDenied("TZDIR", patterns))
	assert.False(t, IsDenied("lc_collate", patterns)) // case-sensitive
}

func TestIsDenied_SuffixWildcard(t *testing.T) {
	patterns := []string{"*_TZ"}
	assert.True(t, IsDenied("HOST_TZ", patterns))
	assert.True(t, IsDenied("DISPLAY_TZ", patterns))
	assert.False(t, IsDenied("TZ_NAME", patterns))
}

func TestIsDenied_ExactMatch(t *testing.T) {
	patterns := []string{"TZ"}
	assert.True(t, IsDenied("TZ", patterns))
	assert.False(t, IsDenied("TZ2", patterns))
	assert.False(t, IsDenied("MY_TZ", patterns))
}

func TestIsDenied_WildcardAll(t *testing.T) {
	patterns := []string{"*"}
	assert.True(t, IsDenied("ANY_VAR", patterns))
	assert.True(t, IsDenied("x", patterns))
	// the executor's fixed triple is exempt even with a deny-all pattern
	assert.False(t, IsDenied("HOME", patterns))
	assert.False(t, IsDenied("LC_ALL", patterns))
}

func TestIsDenied_MultiplePatterns(t *testing.T) {
	patterns := []string{"LC_*", "TZ", "*_LOCALE"}
	assert.True(t, IsDenied("LC_MESSAGES", patterns))
	assert.True(t, IsDenied("TZ", patterns))
	assert.True(t, IsDenied("SYSTEM_LOCALE", patterns))
	assert.False(t, IsDenied("PATH", patterns))
}

func TestIsDenied_MidWildcard(t *testing.T) {
	patterns := []string{"LC_*_OVERRIDE"}
	assert.True(t, IsDenied("LC_TIME_OVERRIDE", patterns))
	assert.True(t, IsDenied("LC_MONEY_OVERRIDE", patterns))
	assert.False(t, IsDenied("LC_OVERRIDE", patterns)) // no middle segment
}

func TestIsDenied_EmptyPatterns(t *testing.T) {
	assert.False(t, IsDenied("ANY_VAR", nil))
	assert.False(t, IsDenied("ANY_VAR", []string{}))
}

func TestIsDenied_InvalidPattern(t *testing.T) {
	// path.Match returns error for malformed patterns like `[`
	patterns := []string{"[invalid"}
	assert.False(t, IsDenied("ANY_VAR", patterns)) // fail-open
}

func TestIsDenied_InvalidPatternWithValidPattern(t *testing.T) {
	// Invalid pattern is skipped, valid pattern still matches
	patterns := []string{"[invalid", "LC_*"}
	assert.True(t, IsDenied("LC_ALL_FAKE", patterns))
	assert.False(t, IsDenied("PATH", patterns))
}

func TestIsExempt_FixedVars(t *testing.T) {
	assert.True(t, IsExempt("HOME"))
	assert.True(t, IsExempt("LANG"))
	assert.True(t, IsExempt("LC_ALL"))
}

func TestIsExempt_CaseInsensitive(t *testing.T) {
	assert.True(t, IsExempt("home"))
	assert.True(t, IsExempt("Lc_All"))
}

func TestIsExempt_NonFixedVars(t *testing.T) {
	assert.False(t, IsExempt("PATH"))
	assert.False(t, IsExempt("LC_COLLATE"))
	assert.False(t, IsExempt("TZ"))
	assert.False(t, IsExempt(""))
}

func TestIsDenied_ExemptVarsNeverDenied(t *testing.T) {
	// Even with a deny-all pattern, the executor's fixed triple is exempt.
	patterns := []string{"*"}
	for _, name := range exemptNames {
		assert.False(t, IsDenied(name, patterns), "fixed var %s should be exempt", name)
	}
}

func TestIsDenied_EmptyName(t *testing.T) {
	patterns := []string{"*"}
	// Empty string matches * but is not exempt
	assert.True(t, IsDenied("", patterns))
}
