package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverCorpus(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"loop.asm", "add.asm", "Zero.asm", "notes.txt", "add.hex", "b.ASM"} {
		writeFile(t, filepath.Join(dir, name), "")
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.asm"), 0o755))
	writeFile(t, filepath.Join(dir, "nested", "deep.asm"), "")

	cases, err := DiscoverCorpus(dir, ".asm")
	require.NoError(t, err)

	assert.Equal(t, []string{"Zero.asm", "add.asm", "loop.asm"}, lo.Map(cases, func(c TestCase, _ int) string { return c.Name }))
	assert.Equal(t, TestCase{Name: "add.asm", BaseName: "add", Path: filepath.Join(dir, "add.asm")}, cases[1])
}

func TestDiscoverCorpus_Errors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := DiscoverCorpus(filepath.Join(t.TempDir(), "testFiles"), ".asm")
		assert.ErrorIs(t, err, ErrCorpusNotFound)
	})

	t.Run("file instead of directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "testFiles")
		writeFile(t, path, "")

		_, err := DiscoverCorpus(path, ".asm")
		assert.ErrorIs(t, err, ErrCorpusNotFound)
	})

	t.Run("no matching files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "readme.md"), "")

		_, err := DiscoverCorpus(dir, ".asm")
		assert.ErrorIs(t, err, ErrCorpusEmpty)
	})

	t.Run("empty directory", func(t *testing.T) {
		_, err := DiscoverCorpus(t.TempDir(), ".asm")
		assert.ErrorIs(t, err, ErrCorpusEmpty)
	})
}
