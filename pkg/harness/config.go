package harness

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Manu343726/asmdiff/pkg/logging"
	"github.com/Manu343726/asmdiff/pkg/utils"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when the harness configuration cannot drive a session
var ErrInvalidConfig = errors.New("invalid configuration")

// Timing groups the empirically tuned delays of a session.
//
// The defaults come from observing the reference assembler on a desktop machine:
// it needs about three seconds to start and raise its modal window, and assembling
// any test file takes well under ten seconds.
type Timing struct {
	// ProcessTimeout is the hard wall clock limit of one tool run. The process is
	// killed and the run fails when it elapses.
	ProcessTimeout time.Duration `mapstructure:"process_timeout" yaml:"process_timeout"`

	// DismissGrace is how long the window watcher waits before its first attempt,
	// roughly the time the tool needs to initialize and show its window.
	DismissGrace time.Duration `mapstructure:"dismiss_grace" yaml:"dismiss_grace"`

	// DismissInterval is the delay between two window search attempts
	DismissInterval time.Duration `mapstructure:"dismiss_interval" yaml:"dismiss_interval"`

	// WatcherStopTimeout bounds how long a run waits for its window watcher to exit
	WatcherStopTimeout time.Duration `mapstructure:"watcher_stop_timeout" yaml:"watcher_stop_timeout"`
}

// DefaultTiming returns the timings the reference assembler was tuned against
func DefaultTiming() Timing {
	return Timing{
		ProcessTimeout:     10 * time.Second,
		DismissGrace:       3 * time.Second,
		DismissInterval:    100 * time.Millisecond,
		WatcherStopTimeout: 500 * time.Millisecond,
	}
}

// CorpusConfig locates the assembly sources of a session
type CorpusConfig struct {
	Dir       string `mapstructure:"dir" yaml:"dir"`
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// ArtifactConfig describes the primary artifact every tool must produce
type ArtifactConfig struct {
	Extension string `mapstructure:"extension" yaml:"extension"`
}

// Config holds everything a session needs. Relative paths are resolved against Root.
type Config struct {
	Root     string          `mapstructure:"root" yaml:"root"`
	Corpus   CorpusConfig    `mapstructure:"corpus" yaml:"corpus"`
	Artifact ArtifactConfig  `mapstructure:"artifact" yaml:"artifact"`
	Timing   Timing          `mapstructure:"timing" yaml:"timing"`
	Tools    []Tool          `mapstructure:"tools" yaml:"tools"`
	Log      logging.Options `mapstructure:"log" yaml:"log"`
}

// DefaultTools returns the two-assembler layout the harness was written for: the
// custom assembler under test and the DSM-51 reference assembler, which pops up a
// "Dsm51Ass" window after assembling.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:       "assembler",
			Path:       "assembler.exe",
			Role:       RoleCandidate,
			OutputDir:  "output_assembler",
			Byproducts: DefaultByproducts,
		},
		{
			Name:          "dsm51",
			Path:          "Dsm51Ass.exe",
			Role:          RoleReference,
			OutputDir:     "output_dsm51",
			DismissWindow: true,
			WindowTitle:   "Dsm51Ass",
			Byproducts:    DefaultByproducts,
		},
	}
}

// SetDefaults registers the default configuration values in v
func SetDefaults(v *viper.Viper) {
	timing := DefaultTiming()

	v.SetDefault("corpus.dir", "testFiles")
	v.SetDefault("corpus.extension", ".asm")
	v.SetDefault("artifact.extension", ".hex")
	v.SetDefault("timing.process_timeout", timing.ProcessTimeout)
	v.SetDefault("timing.dismiss_grace", timing.DismissGrace)
	v.SetDefault("timing.dismiss_interval", timing.DismissInterval)
	v.SetDefault("timing.watcher_stop_timeout", timing.WatcherStopTimeout)
	v.SetDefault("log.level", "warn")
	v.SetDefault("tools", lo.Map(DefaultTools(), func(t Tool, _ int) map[string]any {
		return map[string]any{
			"name":           t.Name,
			"path":           t.Path,
			"role":           string(t.Role),
			"output_dir":     t.OutputDir,
			"dismiss_window": t.DismissWindow,
			"window_title":   t.WindowTitle,
			"byproducts":     t.Byproducts,
		}
	}))
}

// LoadConfig decodes the configuration stored in v, resolves its paths and validates it.
// An empty root defaults to the directory of the running executable.
func LoadConfig(v *viper.Viper) (*Config, error) {
	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, utils.MakeError(ErrInvalidConfig, "%v", err)
	}

	if config.Root == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, utils.MakeError(ErrInvalidConfig, "cannot locate harness executable: %v", err)
		}
		config.Root = filepath.Dir(exe)
	}

	root, err := filepath.Abs(config.Root)
	if err != nil {
		return nil, utils.MakeError(ErrInvalidConfig, "cannot resolve root %q: %v", config.Root, err)
	}

	config.Root = root
	config.Corpus.Dir = resolvePath(root, config.Corpus.Dir)
	config.Tools = lo.Map(config.Tools, func(t Tool, _ int) Tool {
		if t.Byproducts == nil {
			t.Byproducts = DefaultByproducts
		}
		return t.Resolved(root)
	})

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the configuration describes a runnable session
func (c *Config) Validate() error {
	if c.Corpus.Dir == "" {
		return utils.MakeError(ErrInvalidConfig, "corpus directory is not set")
	}

	if !strings.HasPrefix(c.Corpus.Extension, ".") {
		return utils.MakeError(ErrInvalidConfig, "corpus extension %q must start with a dot", c.Corpus.Extension)
	}

	if !strings.HasPrefix(c.Artifact.Extension, ".") {
		return utils.MakeError(ErrInvalidConfig, "artifact extension %q must start with a dot", c.Artifact.Extension)
	}

	for name, d := range map[string]time.Duration{
		"process_timeout":      c.Timing.ProcessTimeout,
		"dismiss_grace":        c.Timing.DismissGrace,
		"dismiss_interval":     c.Timing.DismissInterval,
		"watcher_stop_timeout": c.Timing.WatcherStopTimeout,
	} {
		if d <= 0 {
			return utils.MakeError(ErrInvalidConfig, "timing.%s must be positive, got %v", name, d)
		}
	}

	for _, tool := range c.Tools {
		if err := tool.Validate(); err != nil {
			return utils.MakeError(ErrInvalidConfig, "%v", err)
		}
	}

	if references := lo.CountBy(c.Tools, Tool.IsReference); references != 1 {
		return utils.MakeError(ErrInvalidConfig, "exactly one reference tool is required, got %d", references)
	}

	if len(c.Tools) < 2 {
		return utils.MakeError(ErrInvalidConfig, "at least one candidate tool is required")
	}

	if dups := lo.FindDuplicates(lo.Map(c.Tools, func(t Tool, _ int) string { return t.Name })); len(dups) > 0 {
		return utils.MakeError(ErrInvalidConfig, "duplicate tool names: %s", strings.Join(dups, ", "))
	}

	if dups := lo.FindDuplicates(lo.Map(c.Tools, func(t Tool, _ int) string { return filepath.Clean(t.OutputDir) })); len(dups) > 0 {
		return utils.MakeError(ErrInvalidConfig, "tools share output directories: %s", strings.Join(dups, ", "))
	}

	return nil
}

// Reference returns the reference tool of the configuration
func (c *Config) Reference() (Tool, bool) {
	return lo.Find(c.Tools, Tool.IsReference)
}
