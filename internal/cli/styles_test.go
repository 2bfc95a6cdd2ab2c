package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("done"), "done")
	assert.Contains(t, FormatError("failed"), ErrorIcon)
	assert.Contains(t, FormatTitle("Summary"), TallyIcon)
	assert.Contains(t, RenderBox("Title", "body"), "body")
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"Category", "Amount"}, [][]string{
		{"Software", "1200.00"},
		{"Travel"},
	})

	lines := strings.Split(out, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Contains(t, out, "Category")
	assert.Contains(t, out, "1200.00")
	assert.Contains(t, out, "Travel")
}

func TestNewProgressBar(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgressBar(&buf, 2, "Classifying statements...")

	require.NoError(t, bar.Add(1))
	require.NoError(t, bar.Add(1))
	assert.True(t, bar.IsFinished())
}
