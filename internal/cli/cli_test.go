package cli

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunListThemes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--list-themes"}, &stdout, &stderr)
	assert.Equal(t, 0, code)
	assert.NotEmpty(t, stdout.String())
	assert.Contains(t, stdout.String(), "dark")
}

func TestRunRequiresExactlyOnePath(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "exactly one presentation PATH")
}

func TestRunRejectsUnknownImageProtocol(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--image-protocol", "bogus", "demo"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "unknown image protocol")
}

func TestRunRejectsUnknownTheme(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--theme", "no-such-theme", "demo"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.NotEmpty(t, stderr.String())
}

func TestRunRejectsInvalidSpeakerNotesMode(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--speaker-notes-mode", "sideways", "demo"}, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "invalid --speaker-notes-mode")
}

func TestRunGeneratePDFMetadataOnDemo(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--generate-pdf-metadata", "demo"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stdout.String(), `"slides":`)
}

func TestRunValidateOverflowsOnDemo(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), []string{"--validate-overflows", "demo"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.True(t, strings.Contains(stdout.String(), "rendered"))
}

func TestFlagWasSet(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.String("theme", "dark", "")
	fs.String("config-file", "", "")
	require.NoError(t, fs.Parse([]string{"--theme", "light"}))
	assert.True(t, flagWasSet(fs, "theme"))
	assert.False(t, flagWasSet(fs, "config-file"))
}
