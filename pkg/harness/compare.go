package harness

import (
	"bytes"
	"os"
	"path/filepath"
)

// Comparator decides whether the artifacts named baseName+ext in two directories match
type Comparator func(dir1, dir2, baseName, ext string) bool

// CompareArtifacts reports whether dir1/<baseName><ext> and dir2/<baseName><ext> hold
// exactly the same bytes. A missing or unreadable file counts as a mismatch.
func CompareArtifacts(dir1, dir2, baseName, ext string) bool {
	a, err := os.ReadFile(filepath.Join(dir1, baseName+ext))
	if err != nil {
		return false
	}

	b, err := os.ReadFile(filepath.Join(dir2, baseName+ext))
	if err != nil {
		return false
	}

	return bytes.Equal(a, b)
}
