package harness

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Manu343726/asmdiff/pkg/utils"
)

// Role tells whether a tool is the trusted baseline or the assembler under test
type Role string

const (
	// RoleReference marks the trusted assembler every other output is compared against
	RoleReference Role = "reference"
	// RoleCandidate marks an assembler expected to match the reference output
	RoleCandidate Role = "candidate"
)

// ErrInvalidTool is returned by Tool.Validate
var ErrInvalidTool = errors.New("invalid tool")

// DefaultByproducts lists the secondary files assemblers leave beside the input.
// They are never compared and are always deleted after a successful run.
var DefaultByproducts = []string{".lst", ".bin", ".obj"}

// Tool describes an external assembler executable and how the harness has to treat it
type Tool struct {
	// Name identifies the tool in logs and reports
	Name string `mapstructure:"name" yaml:"name"`

	// Path is the path to the executable
	Path string `mapstructure:"path" yaml:"path"`

	// Role is either RoleReference or RoleCandidate
	Role Role `mapstructure:"role" yaml:"role"`

	// OutputDir receives the collected primary artifacts of this tool
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// DismissWindow is set for tools that raise a modal window that must be closed
	// before the process exits
	DismissWindow bool `mapstructure:"dismiss_window" yaml:"dismiss_window"`

	// WindowTitle is the exact title of the window to close when DismissWindow is set
	WindowTitle string `mapstructure:"window_title" yaml:"window_title,omitempty"`

	// Byproducts are the extensions of secondary outputs deleted after each successful run
	Byproducts []string `mapstructure:"byproducts" yaml:"byproducts"`
}

// IsReference returns true if the tool is the comparison baseline
func (t Tool) IsReference() bool {
	return t.Role == RoleReference
}

func (t Tool) String() string {
	return fmt.Sprintf("%s (%s, %s)", t.Name, t.Role, t.Path)
}

// Validate checks the tool description is complete
func (t Tool) Validate() error {
	if t.Name == "" {
		return utils.MakeError(ErrInvalidTool, "tool has no name")
	}

	if t.Path == "" {
		return utils.MakeError(ErrInvalidTool, "tool %q has no executable path", t.Name)
	}

	if t.OutputDir == "" {
		return utils.MakeError(ErrInvalidTool, "tool %q has no output directory", t.Name)
	}

	if t.Role != RoleReference && t.Role != RoleCandidate {
		return utils.MakeError(ErrInvalidTool, "tool %q has unknown role %q", t.Name, t.Role)
	}

	if t.DismissWindow && t.WindowTitle == "" {
		return utils.MakeError(ErrInvalidTool, "tool %q dismisses windows but has no window title", t.Name)
	}

	for _, ext := range t.Byproducts {
		if !strings.HasPrefix(ext, ".") {
			return utils.MakeError(ErrInvalidTool, "tool %q by-product extension %q must start with a dot", t.Name, ext)
		}
	}

	return nil
}

// Resolved returns a copy of the tool with relative paths made relative to root
func (t Tool) Resolved(root string) Tool {
	t.Path = resolvePath(root, t.Path)
	t.OutputDir = resolvePath(root, t.OutputDir)
	t.Byproducts = append([]string(nil), t.Byproducts...)
	return t
}

func resolvePath(root, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(root, path)
}
