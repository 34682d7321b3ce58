package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/Manu343726/asmdiff/pkg/logging"
	"github.com/Manu343726/asmdiff/pkg/utils"
)

var (
	// ErrToolNotFound is returned when the tool executable does not exist
	ErrToolNotFound = errors.New("tool executable not found")
	// ErrInputNotFound is returned when the source file to assemble does not exist
	ErrInputNotFound = errors.New("input file not found")
	// ErrProcessFailed is returned when the tool could not be started or exited with an error
	ErrProcessFailed = errors.New("tool process failed")
	// ErrTimeout is returned when the tool was killed after exceeding the process timeout
	ErrTimeout = errors.New("tool process timed out")
)

// toolStdin answers the "press any key" prompt some assemblers wait on before exiting
const toolStdin = "\n"

// processWaitDelay bounds how long a killed tool may keep its output pipes open
// through child processes it spawned
var processWaitDelay = time.Second

// RunResult is the outcome of running one tool on one test case
type RunResult struct {
	// Tool is the name of the tool that ran
	Tool string

	// BaseName identifies the test case
	BaseName string

	// Success is true only if the tool ran, wrote its primary artifact, and the
	// artifact was moved into the tool output directory
	Success bool

	// ArtifactPath is the collected primary artifact, empty unless Success is set
	ArtifactPath string

	// Duration is the time spent running the tool process
	Duration time.Duration

	// Stdout and Stderr hold the tool output
	Stdout string
	Stderr string

	// Err describes why the run failed. Informative only: every failure is treated alike.
	Err error
}

// Assembler runs a tool on a source file and collects its primary artifact into the
// tool output directory
type Assembler interface {
	Assemble(ctx context.Context, tool Tool, inputFile string) RunResult
}

// Runner runs external assemblers as child processes
type Runner struct {
	timing      Timing
	artifactExt string
	dismisser   WindowDismisser
	logger      *slog.Logger
}

// Ensure Runner implements Assembler
var _ Assembler = (*Runner)(nil)

// NewRunner creates a runner collecting artifacts with extension artifactExt. dismisser
// closes the windows of tools that raise them, use NewPlatformDismisser for the real one.
func NewRunner(timing Timing, artifactExt string, dismisser WindowDismisser, logger *slog.Logger) *Runner {
	if dismisser == nil {
		dismisser = NoopDismisser{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &Runner{
		timing:      timing,
		artifactExt: artifactExt,
		dismisser:   dismisser,
		logger:      logger,
	}
}

// Assemble runs tool with inputFile as its only argument from the directory of inputFile,
// then collects the artifacts the tool wrote beside it
func (r *Runner) Assemble(ctx context.Context, tool Tool, inputFile string) RunResult {
	baseName := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	result := RunResult{Tool: tool.Name, BaseName: baseName}

	logger := r.logger.With("tool", tool.Name, "case", baseName)

	fail := func(err error) RunResult {
		result.Err = err
		logger.Info("run failed", "error", err, "duration", result.Duration)
		if result.Stderr != "" {
			logger.Debug("tool stderr", "stderr", result.Stderr)
		}
		return result
	}

	toolPath, err := filepath.Abs(tool.Path)
	if err != nil || !fileExists(toolPath) {
		return fail(utils.MakeError(ErrToolNotFound, "%s", tool.Path))
	}

	inputPath, err := filepath.Abs(inputFile)
	if err != nil || !fileExists(inputPath) {
		return fail(utils.MakeError(ErrInputNotFound, "%s", inputFile))
	}

	inputDir := filepath.Dir(inputPath)

	// A leftover artifact from an earlier failed run must not be taken for fresh output.
	stale := filepath.Join(inputDir, baseName+r.artifactExt)
	if err := os.Remove(stale); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fail(utils.MakeError(ErrProcessFailed, "removing stale %s: %v", stale, err))
	}

	if err := r.runProcess(ctx, tool, toolPath, inputPath, &result, logger); err != nil {
		return fail(err)
	}

	artifact, err := CollectArtifacts(inputDir, baseName, tool.OutputDir, r.artifactExt, tool.Byproducts)
	if err != nil {
		return fail(err)
	}

	result.Success = true
	result.ArtifactPath = artifact
	logger.Debug("run succeeded", "artifact", artifact, "duration", result.Duration)
	return result
}

func (r *Runner) runProcess(ctx context.Context, tool Tool, toolPath, inputPath string, result *RunResult, logger *slog.Logger) error {
	if tool.DismissWindow && r.dismisser.Supported() {
		watcher := StartWindowWatcher(r.dismisser, tool.WindowTitle, r.timing.DismissGrace, r.timing.DismissInterval, logger)
		defer watcher.Stop(r.timing.WatcherStopTimeout)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timing.ProcessTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, toolPath, inputPath)
	cmd.Dir = filepath.Dir(inputPath)
	cmd.Stdin = strings.NewReader(toolStdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = processWaitDelay

	logger.Debug("running tool", "command", fmt.Sprintf("%s %s", toolPath, inputPath), "dir", cmd.Dir)

	start := time.Now()
	err := cmd.Run()
	result.Duration = time.Since(start)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	return classifyRunError(err, ctx.Err(), r.timing.ProcessTimeout)
}

// classifyRunError maps the outcome of a tool process to the harness errors. The
// context is only consulted when the process itself failed.
func classifyRunError(runErr, ctxErr error, timeout time.Duration) error {
	if runErr == nil {
		return nil
	}

	switch {
	case errors.Is(ctxErr, context.DeadlineExceeded):
		return utils.MakeError(ErrTimeout, "killed after %v", timeout)
	case ctxErr != nil:
		return utils.MakeError(ErrProcessFailed, "%v", ctxErr)
	default:
		return utils.MakeError(ErrProcessFailed, "%v", runErr)
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
