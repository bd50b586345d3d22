package presenter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempMarkdown(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "mdslide-export-*.md")
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

func TestExportRendersEverySlide(t *testing.T) {
	path := writeTempMarkdown(t, "# one\n\n<!-- mdslide: end_slide -->\n\n# two\n")

	n, err := Export(Options{Path: path}, 24, 80)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestExportRequiresPath(t *testing.T) {
	_, err := Export(Options{}, 24, 80)
	assert.ErrorContains(t, err, "Path is required")
}

func TestExportReturnsErrorForMissingFile(t *testing.T) {
	_, err := Export(Options{Path: "/nonexistent/presentation.md"}, 24, 80)
	assert.Error(t, err)
}
