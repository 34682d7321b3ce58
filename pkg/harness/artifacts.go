package harness

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/Manu343726/asmdiff/pkg/utils"
)

// ErrMissingArtifact is returned when a tool did not write its primary artifact
var ErrMissingArtifact = errors.New("primary artifact not found")

// CollectArtifacts moves the primary artifact <baseName><primaryExt> that a tool wrote
// into sourceDir over to outputDir, then deletes every by-product <baseName><ext> left
// in sourceDir. Missing by-products are ignored.
//
// If the primary artifact does not exist nothing is created, moved or deleted.
// Returns the path of the collected artifact.
func CollectArtifacts(sourceDir, baseName, outputDir, primaryExt string, byproducts []string) (string, error) {
	src := filepath.Join(sourceDir, baseName+primaryExt)

	info, err := os.Stat(src)
	if err != nil {
		return "", utils.MakeError(ErrMissingArtifact, "%s", src)
	}
	if info.IsDir() {
		return "", utils.MakeError(ErrMissingArtifact, "%s is a directory", src)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}

	dst := filepath.Join(outputDir, baseName+primaryExt)
	if err := moveFile(src, dst); err != nil {
		return "", err
	}

	for _, ext := range byproducts {
		if ext == primaryExt {
			continue
		}

		if err := os.Remove(filepath.Join(sourceDir, baseName+ext)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return dst, err
		}
	}

	return dst, nil
}

// moveFile renames src to dst, falling back to copy and delete when both
// paths live in different file systems
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}

	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	in.Close()
	return os.Remove(src)
}
