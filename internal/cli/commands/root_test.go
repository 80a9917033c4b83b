package commands

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ai-guards/ai-guards/internal/project"
	"github.com/ai-guards/ai-guards/internal/registry"
	"github.com/ai-guards/ai-guards/internal/rules"
)

// runCLI executes the root command with args and returns stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func initProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	_, _, err := runCLI(t, "init", "--root", root)
	require.NoError(t, err)
	return root
}

func writeRuleFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func loadRegistry(t *testing.T, root string) registry.Registry {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, registry.FileName))
	require.NoError(t, err)
	reg, err := registry.Decode(data)
	require.NoError(t, err)
	return reg
}

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "ai-guards", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, expected := range []string{"version", "completion", "init", "plan", "rules", "plans"} {
		assert.True(t, names[expected], "expected command %s to be registered", expected)
	}

	for _, flag := range []string{"root", "config", "log-level", "no-color"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestVersionCommand(t *testing.T) {
	Version = "1.0.0-test"
	GitCommit = "abc123"
	defer func() {
		Version = "dev"
		GitCommit = "unknown"
	}()

	out, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "1.0.0-test")
	assert.Contains(t, out, "abc123")
	assert.Contains(t, out, "Go version:")
}

func TestCompletionCommand(t *testing.T) {
	out, _, err := runCLI(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "ai-guards")

	_, _, err = runCLI(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "not initialized",
			err:      &notInitializedError{dir: "/work"},
			contains: []string{"NOT INITIALIZED", "/work", "ai-guards init"},
		},
		{
			name:     "rule not found",
			err:      &RuleNotFoundError{ID: "secrts", Suggestions: []string{"secrets"}},
			contains: []string{"RULE NOT FOUND", "Did you mean: secrets?"},
		},
		{
			name:     "plain error",
			err:      errors.New("disk full"),
			contains: []string{"Error: disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			var buf bytes.Buffer
			cmd.SetErr(&buf)

			printError(cmd, tt.err)
			for _, expected := range tt.contains {
				assert.Contains(t, buf.String(), expected)
			}
		})
	}
}

func TestNotInitialized(t *testing.T) {
	empty := t.TempDir()

	for _, args := range [][]string{
		{"rules", "list"},
		{"rules", "sync"},
		{"rules", "show", "x"},
		{"rules", "add", "x.md"},
		{"plans", "path"},
		{"plans", "root"},
	} {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			_, _, err := runCLI(t, append(args, "--root", empty)...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNotInitialized))
		})
	}
}

func TestInvalidConfig(t *testing.T) {
	root := initProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".ai-guards.yaml"), []byte("log:\n  format: xml\n"), 0o644))

	_, _, err := runCLI(t, "rules", "list", "--root", root)
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	t.Run("creates layout and syncs", func(t *testing.T) {
		root := t.TempDir()

		out, _, err := runCLI(t, "init", "--root", root)
		require.NoError(t, err)
		assert.Contains(t, out, "ai-guards initialized with 1 rule(s) indexed")
		assert.Contains(t, out, ".ai-guards/rules/guidelines/service-naming.md")

		assert.DirExists(t, filepath.Join(root, ".plans"))
		assert.DirExists(t, filepath.Join(root, ".ai-guards", "rules", "security"))
		assert.NoFileExists(t, filepath.Join(root, project.ConfigFile))

		reg := loadRegistry(t, root)
		require.Len(t, reg.Rules, 1)
		assert.Equal(t, "service-naming", reg.Rules[0].ID)
		assert.Equal(t, rules.RuleTypeManual, reg.Rules[0].RuleType)
	})

	t.Run("is repeatable", func(t *testing.T) {
		root := initProject(t)
		before, err := os.ReadFile(filepath.Join(root, registry.FileName))
		require.NoError(t, err)

		_, _, err = runCLI(t, "init", "--root", root)
		require.NoError(t, err)

		after, err := os.ReadFile(filepath.Join(root, registry.FileName))
		require.NoError(t, err)
		assert.Equal(t, string(before), string(after))
	})

	t.Run("custom folder", func(t *testing.T) {
		root := t.TempDir()

		_, _, err := runCLI(t, "init", "--root", root, "--folder", "docs/plans")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(root, project.ConfigFile))
		require.NoError(t, err)
		assert.Equal(t, "docs/plans\n", string(data))

		out, _, err := runCLI(t, "plans", "path", "--root", root)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, "docs", "plans")+"\n", out)
	})

	t.Run("invalid folder", func(t *testing.T) {
		root := t.TempDir()

		_, _, err := runCLI(t, "init", "--root", root, "--folder", "../outside")
		require.Error(t, err)
		assert.NoDirExists(t, filepath.Join(root, ".ai-guards"))
	})

	t.Run("force overwrites sample rule", func(t *testing.T) {
		root := initProject(t)
		sample := filepath.Join(root, ".ai-guards", "rules", "guidelines", "service-naming.md")
		require.NoError(t, os.WriteFile(sample, []byte("---\nalwaysApply: true\n---\n"), 0o644))

		_, _, err := runCLI(t, "init", "--root", root)
		require.NoError(t, err)
		assert.Equal(t, rules.RuleTypeAlways, loadRegistry(t, root).Rules[0].RuleType)

		_, _, err = runCLI(t, "init", "--root", root, "--force", "--yes")
		require.NoError(t, err)
		assert.Equal(t, rules.RuleTypeManual, loadRegistry(t, root).Rules[0].RuleType)
	})
}
