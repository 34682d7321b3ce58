package harness

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/samber/lo"
	"golang.org/x/term"
)

// CaseResult is the outcome of one test case
type CaseResult struct {
	Case TestCase

	// Passed is true if every tool succeeded and all candidate artifacts match the reference
	Passed bool

	// Runs holds one result per tool, in configuration order
	Runs []RunResult

	// Compared is false when a failed run prevented the comparison
	Compared bool

	// Mismatches lists the candidate tools whose artifact differs from the reference
	Mismatches []string
}

// FailedRuns returns the runs of the case that did not succeed
func (c CaseResult) FailedRuns() []RunResult {
	return lo.Filter(c.Runs, func(run RunResult, _ int) bool { return !run.Success })
}

// Report aggregates the case results of a session, in corpus order
type Report struct {
	SessionID string
	Cases     []CaseResult
	Duration  time.Duration
}

// Total returns the number of cases that ran
func (r *Report) Total() int {
	return len(r.Cases)
}

// Passed returns the number of passed cases
func (r *Report) Passed() int {
	return lo.CountBy(r.Cases, func(c CaseResult) bool { return c.Passed })
}

// Failures returns the failed cases
func (r *Report) Failures() []CaseResult {
	return lo.Filter(r.Cases, func(c CaseResult, _ int) bool { return !c.Passed })
}

// AllPassed returns true if every case passed
func (r *Report) AllPassed() bool {
	return r.Passed() == r.Total()
}

// ExitCode returns the process exit status summarizing the session
func (r *Report) ExitCode() int {
	if r.AllPassed() {
		return 0
	}
	return 1
}

// Reporter receives session progress as it happens
type Reporter interface {
	SessionStarted(cases []TestCase)
	CaseFinished(result CaseResult)
	SessionFinished(report *Report)
}

// ConsoleReporter prints one line per case and a final pass count
type ConsoleReporter struct {
	w    io.Writer
	ok   *color.Color
	fail *color.Color
}

// Ensure ConsoleReporter implements Reporter
var _ Reporter = (*ConsoleReporter)(nil)

// NewConsoleReporter creates a reporter writing to w. Status markers are colored
// only when w is a terminal.
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	r := &ConsoleReporter{
		w:    w,
		ok:   color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
	}

	if isTerminal(w) {
		r.ok.EnableColor()
		r.fail.EnableColor()
	} else {
		r.ok.DisableColor()
		r.fail.DisableColor()
	}

	return r
}

func (r *ConsoleReporter) SessionStarted([]TestCase) {
	fmt.Fprintln(r.w, "Running tests")
}

func (r *ConsoleReporter) CaseFinished(result CaseResult) {
	if result.Passed {
		fmt.Fprintf(r.w, " %s %s\n", r.ok.Sprint("OK"), result.Case.Name)
	} else {
		fmt.Fprintf(r.w, " %s %s\n", r.fail.Sprint("X"), result.Case.Name)
	}
}

func (r *ConsoleReporter) SessionFinished(report *Report) {
	fmt.Fprintf(r.w, "\nPassed: %d/%d\n", report.Passed(), report.Total())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
