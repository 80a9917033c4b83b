package utils

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var errDenied = errors.New("permission denied")

// deniedFs fails to open the listed directories.
type deniedFs struct {
	afero.Fs
	denied map[string]bool
}

func (d *deniedFs) Open(name string) (afero.File, error) {
	if d.denied[filepath.Clean(name)] {
		return nil, &os.PathError{Op: "open", Path: name, Err: errDenied}
	}
	return d.Fs.Open(name)
}

func writeFiles(t *testing.T, fs afero.Fs, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fs, path, []byte("x"), 0o644))
	}
}

func TestFindRuleFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/proj/.ai-guards/rules"

	writeFiles(t, fs, dir,
		"general/b.md",
		"general/a.markdown",
		"security/nested/deep.md",
		"security/notes.txt",
		"guidelines/service-naming.mdc",
		"UPPER.MD",
	)
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "folder.md"), 0o755))

	files, err := FindRuleFiles(fs, dir, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "general/a.markdown"),
		filepath.Join(dir, "general/b.md"),
		filepath.Join(dir, "security/nested/deep.md"),
	}, files)
}

func TestFindRuleFilesMissingDir(t *testing.T) {
	files, err := FindRuleFiles(afero.NewMemMapFs(), "/does/not/exist", nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindRuleFilesSkipsHidden(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/proj/.ai-guards/rules"
	writeFiles(t, fs, dir,
		"general/rule.md",
		"general/.hidden.md",
		"general/._rule.md",
		"general/.#rule.md",
		".drafts/draft.md",
		".drafts/nested/deeper.md",
	)

	files, err := FindRuleFiles(fs, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "general/rule.md")}, files)
}

func TestFindRuleFilesSkipsUnreadableDirectory(t *testing.T) {
	mem := afero.NewMemMapFs()
	dir := "/proj/.ai-guards/rules"
	writeFiles(t, mem, dir,
		"general/a.md",
		"locked/b.md",
		"security/c.md",
	)
	fs := &deniedFs{Fs: mem, denied: map[string]bool{filepath.Join(dir, "locked"): true}}

	core, logs := observer.New(zapcore.WarnLevel)
	files, err := FindRuleFiles(fs, dir, zap.New(core))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "general/a.md"),
		filepath.Join(dir, "security/c.md"),
	}, files)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, filepath.Join(dir, "locked"), logs.All()[0].ContextMap()["path"])
}

func TestFindRuleFilesUnreadableRoot(t *testing.T) {
	mem := afero.NewMemMapFs()
	dir := "/proj/.ai-guards/rules"
	writeFiles(t, mem, dir, "a.md")
	fs := &deniedFs{Fs: mem, denied: map[string]bool{dir: true}}

	_, err := FindRuleFiles(fs, dir, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errDenied))
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/rules/.hidden.md"))
	assert.True(t, IsHidden(".drafts"))
	assert.False(t, IsHidden("/rules/.ai-guards/rule.md"))
}

func TestIsRuleFile(t *testing.T) {
	assert.True(t, IsRuleFile("a.md"))
	assert.True(t, IsRuleFile("a.markdown"))
	assert.False(t, IsRuleFile("A.MD"))
	assert.False(t, IsRuleFile("a.mdc"))
	assert.False(t, IsRuleFile("md"))
}
