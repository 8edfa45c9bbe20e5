package recognizer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDict(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dict.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCharset(t *testing.T) {
	path := writeDict(t, "a\nb\nc\n")
	cs, err := LoadCharset(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cs.Size())
	assert.Equal(t, "a", cs.Token(0))
	assert.Equal(t, "c", cs.Token(2))
	assert.Equal(t, 1, cs.Index("b"))
	assert.Equal(t, -1, cs.Index("z"))
}

func TestLoadCharsetStripsBOMAndBlanks(t *testing.T) {
	path := writeDict(t, "\uFEFFa\n\n  b  \n\n")
	cs, err := LoadCharset(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cs.Size())
	assert.Equal(t, "a", cs.Token(0))
	assert.Equal(t, "b", cs.Token(1))
}

func TestLoadCharsetMultiCodepointTokens(t *testing.T) {
	path := writeDict(t, "ch\nll\nrr\n")
	cs, err := LoadCharset(path)
	require.NoError(t, err)
	assert.Equal(t, "ll", cs.Token(1))
}

func TestLoadCharsetErrors(t *testing.T) {
	_, err := LoadCharset("")
	assert.Error(t, err)

	_, err = LoadCharset(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = LoadCharset(writeDict(t, "\n\n"))
	assert.Error(t, err)
}

func TestCharsetTokenOutOfRange(t *testing.T) {
	cs, err := NewCharset([]string{"a"})
	require.NoError(t, err)
	assert.Empty(t, cs.Token(-1))
	assert.Empty(t, cs.Token(5))
}

func TestNewCharsetDuplicatesKeepFirstIndex(t *testing.T) {
	cs, err := NewCharset([]string{"a", "b", "a"})
	require.NoError(t, err)
	assert.Equal(t, 0, cs.Index("a"))
	assert.Equal(t, 3, cs.Size())
}
