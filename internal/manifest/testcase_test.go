package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTestCaseList_Valid(t *testing.T) {
	input := `Content-Type: application/X-atf-tp; version="1"

ident: t1
descr: first case
has.cleanup: true

ident: t2
use.fs: true
timeout: 30
`
	md, err := ParseTestCaseList(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, md.Cases, 2)

	assert.Equal(t, "t1", md.Cases[0].Name)
	assert.Equal(t, "first case", md.Cases[0].Descr())
	assert.True(t, md.Cases[0].HasCleanup())
	assert.False(t, md.Cases[0].UseFS())

	assert.Equal(t, "t2", md.Cases[1].Name)
	assert.True(t, md.Cases[1].UseFS())
	assert.Equal(t, "30", md.Cases[1].Props["timeout"])
}

func TestParseTestCaseList_Empty(t *testing.T) {
	input := `Content-Type: application/X-atf-tp; version="1"
`
	md, err := ParseTestCaseList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Empty(t, md.Cases)
}

func TestParseTestCaseList_PropertyBeforeIdent(t *testing.T) {
	input := `Content-Type: application/X-atf-tp; version="1"

descr: orphaned
`
	_, err := ParseTestCaseList(strings.NewReader(input))
	require.Error(t, err)
	var perrs ParseErrors
	require.ErrorAs(t, err, &perrs)
	assert.Contains(t, perrs[0].Message, "outside of any case")
}

func TestParseTestCaseList_MalformedRecordAccumulates(t *testing.T) {
	input := `Content-Type: application/X-atf-tp; version="1"

ident: t1
not a valid record

ident t2 missing colon
descr: second
`
	_, err := ParseTestCaseList(strings.NewReader(input))
	require.Error(t, err)
	var perrs ParseErrors
	require.ErrorAs(t, err, &perrs)
	assert.GreaterOrEqual(t, len(perrs), 2)
}

func TestParseTestCaseList_MissingIdentName(t *testing.T) {
	input := `Content-Type: application/X-atf-tp; version="1"

ident:
descr: x
`
	_, err := ParseTestCaseList(strings.NewReader(input))
	require.Error(t, err)
}
