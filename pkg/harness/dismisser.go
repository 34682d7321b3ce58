package harness

import (
	"log/slog"
	"time"
)

// WindowDismisser closes windows raised by external tools.
//
// Implementations are best-effort: failing to find a window is not an error.
type WindowDismisser interface {
	// Supported returns false on platforms without a windowing system to search.
	// The runner never starts a watcher for an unsupported dismisser.
	Supported() bool

	// Dismiss posts a graceful close request to the top-level window titled
	// exactly title, and returns whether such a window was found.
	Dismiss(title string) (bool, error)
}

// NoopDismisser never finds any window
type NoopDismisser struct{}

func (NoopDismisser) Supported() bool { return false }

func (NoopDismisser) Dismiss(string) (bool, error) { return false, nil }

// WindowWatcher repeatedly tries to close a window while a tool runs
type WindowWatcher struct {
	dismisser WindowDismisser
	title     string
	grace     time.Duration
	interval  time.Duration
	logger    *slog.Logger

	stop chan struct{}
	done chan struct{}
}

// StartWindowWatcher launches a goroutine that waits grace, then looks for a window
// titled title every interval and asks dismisser to close it, until Stop is called
func StartWindowWatcher(dismisser WindowDismisser, title string, grace, interval time.Duration, logger *slog.Logger) *WindowWatcher {
	w := &WindowWatcher{
		dismisser: dismisser,
		title:     title,
		grace:     grace,
		interval:  interval,
		logger:    logger,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}

	go w.watch()
	return w
}

func (w *WindowWatcher) watch() {
	defer close(w.done)

	timer := time.NewTimer(w.grace)
	defer timer.Stop()

	select {
	case <-w.stop:
		return
	case <-timer.C:
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		found, err := w.dismisser.Dismiss(w.title)
		if err != nil {
			w.logger.Debug("window dismissal failed", "title", w.title, "error", err)
		} else if found {
			w.logger.Debug("window close requested", "title", w.title)
		}

		select {
		case <-w.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop signals the watcher to finish and waits at most timeout for it to exit.
// Returns false if the watcher was still running when the timeout elapsed.
// Stop must be called exactly once.
func (w *WindowWatcher) Stop(timeout time.Duration) bool {
	close(w.stop)

	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		w.logger.Warn("window watcher did not stop in time", "title", w.title, "timeout", timeout)
		return false
	}
}
