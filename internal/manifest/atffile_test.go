package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAtffile_Valid(t *testing.T) {
	input := `Content-Type: application/X-atf-atffile; version="1"

prop test-suite = mysuite
tp t_one
tp t_two
conf suite.conf
`
	af, err := ParseAtffile(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, "mysuite", af.TestSuite())
	assert.Equal(t, []string{"t_one", "t_two"}, af.TestProgs)
	assert.Equal(t, []string{"suite.conf"}, af.ConfFiles)
}

func TestParseAtffile_MissingTestSuite(t *testing.T) {
	input := `Content-Type: application/X-atf-atffile; version="1"

tp t_one
`
	_, err := ParseAtffile(strings.NewReader(input))
	require.Error(t, err)
	var perrs ParseErrors
	require.ErrorAs(t, err, &perrs)
	found := false
	for _, e := range perrs {
		if strings.Contains(e.Message, "test-suite") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseAtffile_AccumulatesMultipleErrors(t *testing.T) {
	input := `Content-Type: application/X-atf-atffile; version="1"

prop test-suite = mysuite
bogus record one
tp:
bogus record two
`
	_, err := ParseAtffile(strings.NewReader(input))
	require.Error(t, err)
	var perrs ParseErrors
	require.ErrorAs(t, err, &perrs)
	require.GreaterOrEqual(t, len(perrs), 2)
}

func TestParseAtffile_CommentsAndBlankLinesIgnored(t *testing.T) {
	input := `Content-Type: application/X-atf-atffile; version="1"

# a comment
prop test-suite = mysuite

# another comment
tp t_one
`
	af, err := ParseAtffile(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"t_one"}, af.TestProgs)
}

func TestParseAtffile_BadHeader(t *testing.T) {
	input := "not a header\n"
	_, err := ParseAtffile(strings.NewReader(input))
	require.Error(t, err)
}

func TestParseAtffile_WrongFormatHeader(t *testing.T) {
	input := `Content-Type: application/X-atf-tp; version="1"
`
	_, err := ParseAtffile(strings.NewReader(input))
	require.Error(t, err)
}
