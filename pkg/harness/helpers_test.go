package harness

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

// testTiming keeps watcher delays short so tests run fast
func testTiming() Timing {
	return Timing{
		ProcessTimeout:     5 * time.Second,
		DismissGrace:       10 * time.Millisecond,
		DismissInterval:    5 * time.Millisecond,
		WatcherStopTimeout: time.Second,
	}
}

// newTestConfig returns the default two-tool layout rooted at a temporary directory
func newTestConfig(t *testing.T) *Config {
	t.Helper()

	root := t.TempDir()
	return &Config{
		Root:     root,
		Corpus:   CorpusConfig{Dir: filepath.Join(root, "testFiles"), Extension: ".asm"},
		Artifact: ArtifactConfig{Extension: ".hex"},
		Timing:   testTiming(),
		Tools: lo.Map(DefaultTools(), func(tool Tool, _ int) Tool {
			return tool.Resolved(root)
		}),
	}
}

// writeFile creates path with the given content, creating parent directories as needed
func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeTool creates an executable shell script acting as a fake assembler
func writeTool(t *testing.T, path string, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake assemblers are POSIX shell scripts")
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755))
	return path
}

// listDir returns the sorted file names inside dir
func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return lo.Map(entries, func(e os.DirEntry, _ int) string { return e.Name() })
}

// Assembler scripts. They run from the directory of the source file, like the real tools.
const (
	// copies the source into <base>.hex and leaves every by-product behind
	copyingAssembler = `base=$(basename "$1" .asm)
read answer || exit 3
cat "$1" > "$base.hex"
echo listing > "$base.lst"
echo binary > "$base.bin"
echo object > "$base.obj"`

	// like copyingAssembler but appends a byte to loop.asm outputs
	driftingAssembler = `base=$(basename "$1" .asm)
cat "$1" > "$base.hex"
if [ "$base" = "loop" ]; then printf x >> "$base.hex"; fi
echo listing > "$base.lst"`

	// exits successfully without writing anything
	silentAssembler = `exit 0`

	// writes its artifact but reports an error
	failingAssembler = `base=$(basename "$1" .asm)
cat "$1" > "$base.hex"
echo "syntax error" >&2
exit 2`

	// never finishes on its own
	hangingAssembler = `exec sleep 30`

	// keeps running long enough for window watchers to poll
	slowAssembler = `base=$(basename "$1" .asm)
sleep 1
cat "$1" > "$base.hex"`
)

// fakeDismisser records dismissal attempts
type fakeDismisser struct {
	supported bool
	found     bool
	err       error

	mu     sync.Mutex
	titles []string
}

func (d *fakeDismisser) Supported() bool { return d.supported }

func (d *fakeDismisser) Dismiss(title string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.titles = append(d.titles, title)
	return d.found, d.err
}

func (d *fakeDismisser) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.titles)
}

func (d *fakeDismisser) Titles() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.titles...)
}
