package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTool_Validate(t *testing.T) {
	valid := Tool{
		Name:       "dsm51",
		Path:       "Dsm51Ass.exe",
		Role:       RoleReference,
		OutputDir:  "output_dsm51",
		Byproducts: []string{".lst"},
	}

	tests := []struct {
		name   string
		modify func(*Tool)
		valid  bool
	}{
		{"complete tool", func(*Tool) {}, true},
		{"missing name", func(tool *Tool) { tool.Name = "" }, false},
		{"missing path", func(tool *Tool) { tool.Path = "" }, false},
		{"missing output dir", func(tool *Tool) { tool.OutputDir = "" }, false},
		{"unknown role", func(tool *Tool) { tool.Role = "judge" }, false},
		{"window title required", func(tool *Tool) { tool.DismissWindow = true }, false},
		{"window title given", func(tool *Tool) { tool.DismissWindow = true; tool.WindowTitle = "Dsm51Ass" }, true},
		{"by-product without dot", func(tool *Tool) { tool.Byproducts = []string{"lst"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tool := valid
			tt.modify(&tool)

			err := tool.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTool)
			}
		})
	}
}

func TestTool_Resolved(t *testing.T) {
	root := t.TempDir()
	abs := filepath.Join(root, "elsewhere", "assembler.exe")

	tool := Tool{Name: "assembler", Path: "assembler.exe", OutputDir: "output_assembler", Byproducts: DefaultByproducts}
	resolved := tool.Resolved(root)

	assert.Equal(t, filepath.Join(root, "assembler.exe"), resolved.Path)
	assert.Equal(t, filepath.Join(root, "output_assembler"), resolved.OutputDir)
	assert.Equal(t, "assembler.exe", tool.Path, "the receiver is not modified")

	resolved.Byproducts[0] = ".changed"
	assert.Equal(t, ".lst", DefaultByproducts[0], "by-products must be copied")

	tool.Path = abs
	assert.Equal(t, abs, tool.Resolved(root).Path, "absolute paths are kept")
}

func TestDefaultTools(t *testing.T) {
	tools := DefaultTools()
	require.Len(t, tools, 2)

	candidate, reference := tools[0], tools[1]

	assert.Equal(t, RoleCandidate, candidate.Role)
	assert.False(t, candidate.DismissWindow)

	assert.True(t, reference.IsReference())
	assert.True(t, reference.DismissWindow)
	assert.Equal(t, "Dsm51Ass", reference.WindowTitle)

	for _, tool := range tools {
		assert.NoError(t, tool.Validate())
		assert.ElementsMatch(t, []string{".lst", ".bin", ".obj"}, tool.Byproducts, "%s discards every by-product", tool.Name)
	}
}
