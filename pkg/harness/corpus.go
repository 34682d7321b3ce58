package harness

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Manu343726/asmdiff/pkg/utils"
)

var (
	// ErrCorpusNotFound is returned when the test files directory does not exist
	ErrCorpusNotFound = errors.New("corpus directory not found")
	// ErrCorpusEmpty is returned when the test files directory has no source files
	ErrCorpusEmpty = errors.New("corpus is empty")
)

// TestCase is one assembly source file of the corpus
type TestCase struct {
	// Name is the file name, e.g. "add.asm"
	Name string
	// BaseName is the file name without extension, e.g. "add". Artifacts of every tool
	// are keyed by it.
	BaseName string
	// Path is the full path to the source file
	Path string
}

// DiscoverCorpus lists the regular files with extension ext directly inside dir,
// sorted by file name
func DiscoverCorpus(dir, ext string) ([]TestCase, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, utils.MakeError(ErrCorpusNotFound, "%s", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, utils.MakeError(ErrCorpusNotFound, "%s: %v", dir, err)
	}

	var cases []TestCase
	for _, entry := range entries {
		name := entry.Name()
		if filepath.Ext(name) != ext || !isRegularFile(filepath.Join(dir, name)) {
			continue
		}

		cases = append(cases, TestCase{
			Name:     name,
			BaseName: strings.TrimSuffix(name, ext),
			Path:     filepath.Join(dir, name),
		})
	}

	if len(cases) == 0 {
		return nil, utils.MakeError(ErrCorpusEmpty, "no %s files in %s", ext, dir)
	}

	slices.SortFunc(cases, func(a, b TestCase) int {
		return strings.Compare(a.Name, b.Name)
	})

	return cases, nil
}

// isRegularFile follows symlinks, so linked sources are part of the corpus too
func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
