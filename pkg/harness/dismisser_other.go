//go:build !windows
// +build !windows

package harness

// NewPlatformDismisser returns the window dismisser of the running platform.
// There is no window to search for outside Windows.
func NewPlatformDismisser() WindowDismisser {
	return NoopDismisser{}
}
