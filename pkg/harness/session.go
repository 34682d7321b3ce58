package harness

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/Manu343726/asmdiff/pkg/logging"
	"github.com/Manu343726/asmdiff/pkg/utils"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ErrOutputDir is returned when a tool output directory cannot be reset
var ErrOutputDir = errors.New("cannot reset output directory")

// Session runs every configured tool over the corpus and compares their artifacts.
//
// Cases and tools run strictly one after another, in corpus and configuration order.
type Session struct {
	Config *Config

	// Assembler runs one tool on one source file
	Assembler Assembler

	// Compare decides whether two collected artifacts match
	Compare Comparator

	// Reporter receives progress while the session runs
	Reporter Reporter

	Logger *slog.Logger

	// ID identifies the session in logs
	ID string
}

// NewSession creates a session using the real process runner, the byte comparator and
// a console reporter on stdout. Fields can be replaced before calling Run.
func NewSession(config *Config, logger *slog.Logger) *Session {
	if logger == nil {
		logger = logging.Discard()
	}

	id := uuid.NewString()
	logger = logger.With("session", id)

	return &Session{
		Config:    config,
		Assembler: NewRunner(config.Timing, config.Artifact.Extension, NewPlatformDismisser(), logger),
		Compare:   CompareArtifacts,
		Reporter:  NewConsoleReporter(os.Stdout),
		Logger:    logger,
		ID:        id,
	}
}

// Run executes the session. The returned error is only set for configuration problems
// detected before any case runs (ErrOutputDir, ErrCorpusNotFound, ErrCorpusEmpty); test
// failures are reported through the returned Report.
func (s *Session) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	for _, tool := range s.Config.Tools {
		if err := os.RemoveAll(tool.OutputDir); err != nil {
			return nil, utils.MakeError(ErrOutputDir, "%s: %v", tool.OutputDir, err)
		}
	}

	cases, err := DiscoverCorpus(s.Config.Corpus.Dir, s.Config.Corpus.Extension)
	if err != nil {
		return nil, err
	}

	s.Logger.Info("session started", "cases", len(cases), "corpus", s.Config.Corpus.Dir, "tools", len(s.Config.Tools))
	s.Reporter.SessionStarted(cases)

	report := &Report{SessionID: s.ID, Cases: make([]CaseResult, 0, len(cases))}

	for _, testCase := range cases {
		result := s.runCase(ctx, testCase)
		report.Cases = append(report.Cases, result)
		s.Reporter.CaseFinished(result)
	}

	report.Duration = time.Since(start)
	s.Logger.Info("session finished", "passed", report.Passed(), "total", report.Total(), "duration", report.Duration)
	s.Reporter.SessionFinished(report)

	return report, nil
}

func (s *Session) runCase(ctx context.Context, testCase TestCase) CaseResult {
	result := CaseResult{Case: testCase}

	for _, tool := range s.Config.Tools {
		result.Runs = append(result.Runs, s.Assembler.Assemble(ctx, tool, testCase.Path))
	}

	if failed := result.FailedRuns(); len(failed) > 0 {
		s.Logger.Info("case not compared", "case", testCase.Name, "failed_tools", lo.Map(failed, func(run RunResult, _ int) string { return run.Tool }))
		return result
	}

	reference, _ := s.Config.Reference()
	result.Compared = true

	for _, tool := range s.Config.Tools {
		if tool.IsReference() {
			continue
		}

		if !s.Compare(reference.OutputDir, tool.OutputDir, testCase.BaseName, s.Config.Artifact.Extension) {
			result.Mismatches = append(result.Mismatches, tool.Name)
		}
	}

	result.Passed = len(result.Mismatches) == 0
	if !result.Passed {
		s.Logger.Info("artifacts differ", "case", testCase.Name, "tools", result.Mismatches)
	}

	return result
}
