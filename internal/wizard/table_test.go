package wizard

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTable_AlignsWideRunes(t *testing.T) {
	var buf bytes.Buffer
	writeTable(&buf, []string{"Name", "Hours"}, [][]string{
		{"見積", "8"},
		{"ab", "16"},
		{"Café"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Name  Hours", lines[0])
	assert.Equal(t, "見積  8", lines[2])
	assert.Equal(t, "ab    16", lines[3])
	assert.Equal(t, "Café", lines[4], "missing cells are blank and trailing space is trimmed")
}

func TestWriteTable_TruncatesLongCells(t *testing.T) {
	var buf bytes.Buffer
	long := strings.Repeat("x", maxCellWidth+10)
	writeTable(&buf, []string{"Note"}, [][]string{{long}})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[2], "…"))
	assert.Less(t, len([]rune(lines[2])), len(long))
}
