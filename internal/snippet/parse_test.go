package snippet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInfoStringDefaults(t *testing.T) {
	lang, attrs, err := ParseInfoString("python")
	require.NoError(t, err)
	assert.Equal(t, "python", lang)
	assert.Equal(t, ReprSnippet, attrs.Representation)
	assert.Equal(t, []HighlightGroup{{Highlights: []Highlight{{All: true}}}}, attrs.HighlightGroups)
}

func TestParseInfoStringAttributesAndHighlight(t *testing.T) {
	lang, attrs, err := ParseInfoString("go +exec +line_numbers {1, 2-4 | 6}")
	require.NoError(t, err)
	assert.Equal(t, "go", lang)
	assert.True(t, attrs.LineNumbers)
	assert.Equal(t, ExecManual, attrs.Execution)
	require.Len(t, attrs.HighlightGroups, 2)
	assert.True(t, attrs.HighlightGroups[0].Contains(1))
	assert.True(t, attrs.HighlightGroups[0].Contains(3))
	assert.False(t, attrs.HighlightGroups[0].Contains(6))
	assert.True(t, attrs.HighlightGroups[1].Contains(6))
}

func TestParseInfoStringDuplicateAttributeIsError(t *testing.T) {
	_, _, err := ParseInfoString("go +exec +exec")
	assert.Error(t, err)
}

func TestParseInfoStringWidthRequiresRender(t *testing.T) {
	_, _, err := ParseInfoString("go +width:50%")
	assert.Error(t, err)
}

func TestParseInfoStringWidthWithRenderOK(t *testing.T) {
	_, attrs, err := ParseInfoString("typst +render +width:50%")
	require.NoError(t, err)
	assert.EqualValues(t, 50, attrs.Width)
}

func TestParseInfoStringIDOnlyValidForExecSnippet(t *testing.T) {
	_, _, err := ParseInfoString("go +render +id:out")
	assert.Error(t, err)

	_, attrs, err := ParseInfoString("go +exec +id:out")
	require.NoError(t, err)
	assert.Equal(t, "out", attrs.ID)
}
