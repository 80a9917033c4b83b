package project

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mkdirs(t *testing.T, fs afero.Fs, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d, 0o755))
	}
}

func writeConfig(t *testing.T, fs afero.Fs, dir, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(dir, 0o755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, ConfigFile), []byte(content), 0o644))
}

func TestFindPlansDirectory(t *testing.T) {
	t.Run("legacy layout", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.ai-guards/plans")

		path, ok := FindPlansDirectory(fs, "/test")
		require.True(t, ok)
		assert.Equal(t, "/test/.ai-guards/plans", path)
	})

	t.Run("new layout wins over legacy", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.ai-guards/plans", "/test/.plans")

		path, ok := FindPlansDirectory(fs, "/test")
		require.True(t, ok)
		assert.Equal(t, "/test/.plans", path)
	})

	t.Run("custom folder wins over standard layouts", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.plans", "/test/.ai-guards/plans", "/test/my-plans")
		writeConfig(t, fs, "/test", "my-plans\n")

		path, ok := FindPlansDirectory(fs, "/test")
		require.True(t, ok)
		assert.Equal(t, "/test/my-plans", path)
	})

	t.Run("custom folder that does not exist falls through", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.plans")
		writeConfig(t, fs, "/test", "my-plans")

		path, ok := FindPlansDirectory(fs, "/test")
		require.True(t, ok)
		assert.Equal(t, "/test/.plans", path)
	})

	t.Run("blank config names the level itself", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.ai-guards/plans", "/test/src")
		writeConfig(t, fs, "/test", "  \n")

		path, ok := FindPlansDirectory(fs, "/test/src")
		require.True(t, ok)
		assert.Equal(t, "/test", path)
	})

	t.Run("closest level wins", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.plans", "/test/app/.ai-guards/plans", "/test/app/src/pkg")

		path, ok := FindPlansDirectory(fs, "/test/app/src/pkg")
		require.True(t, ok)
		assert.Equal(t, "/test/app/.ai-guards/plans", path)
	})

	t.Run("not found", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/src")

		path, ok := FindPlansDirectory(fs, "/test/src")
		assert.False(t, ok)
		assert.Empty(t, path)
	})
}

// nested returns a path depth levels below base.
func nested(base string, depth int) string {
	parts := make([]string, depth)
	for i := range parts {
		parts[i] = "d"
	}
	return base + "/" + strings.Join(parts, "/")
}

func TestSearchDepthLimit(t *testing.T) {
	fs := afero.NewMemMapFs()
	mkdirs(t, fs, "/test/.plans")

	within := nested("/test", MaxSearchDepth-1)
	beyond := nested("/test", MaxSearchDepth)
	mkdirs(t, fs, beyond)

	path, ok := FindPlansDirectory(fs, within)
	require.True(t, ok)
	assert.Equal(t, "/test/.plans", path)

	_, ok = FindPlansDirectory(fs, beyond)
	assert.False(t, ok)

	root, ok := FindProjectRoot(fs, within)
	require.True(t, ok)
	assert.Equal(t, "/test", root)

	_, ok = FindProjectRoot(fs, beyond)
	assert.False(t, ok)
}

func TestFindProjectRoot(t *testing.T) {
	t.Run("plans marker", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.plans", "/test/src")

		root, ok := FindProjectRoot(fs, "/test/src")
		require.True(t, ok)
		assert.Equal(t, "/test", root)
	})

	t.Run("guards marker", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/.ai-guards/rules")

		root, ok := FindProjectRoot(fs, "/test")
		require.True(t, ok)
		assert.Equal(t, "/test", root)
	})

	t.Run("custom plans folder alone is not a marker", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		mkdirs(t, fs, "/test/my-plans")
		writeConfig(t, fs, "/test", "my-plans")

		_, ok := FindProjectRoot(fs, "/test")
		assert.False(t, ok)

		_, ok = FindPlansDirectory(fs, "/test")
		assert.True(t, ok)
	})

	t.Run("not found", func(t *testing.T) {
		_, ok := FindProjectRoot(afero.NewMemMapFs(), "/nowhere")
		assert.False(t, ok)
	})
}

func TestDefaultPlansPath(t *testing.T) {
	assert.Equal(t, "/test/.plans", DefaultPlansPath("/test", ""))
	assert.Equal(t, "/test/my-plans", DefaultPlansPath("/test", "my-plans"))
}

func TestIsInitialized(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, fs afero.Fs)
		want  bool
	}{
		{
			name:  "empty directory",
			setup: func(t *testing.T, fs afero.Fs) { mkdirs(t, fs, "/test") },
			want:  false,
		},
		{
			name:  "plans folder",
			setup: func(t *testing.T, fs afero.Fs) { mkdirs(t, fs, "/test/.plans") },
			want:  true,
		},
		{
			name:  "guards folder",
			setup: func(t *testing.T, fs afero.Fs) { mkdirs(t, fs, "/test/.ai-guards") },
			want:  true,
		},
		{
			name: "custom folder",
			setup: func(t *testing.T, fs afero.Fs) {
				mkdirs(t, fs, "/test/docs/plans")
				writeConfig(t, fs, "/test", "docs/plans")
			},
			want: true,
		},
		{
			name:  "blank config",
			setup: func(t *testing.T, fs afero.Fs) { writeConfig(t, fs, "/test", "\n") },
			want:  true,
		},
		{
			name:  "config naming a missing folder",
			setup: func(t *testing.T, fs afero.Fs) { writeConfig(t, fs, "/test", "missing") },
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			tt.setup(t, fs)
			assert.Equal(t, tt.want, IsInitialized(fs, "/test"))
		})
	}
}

func TestReadConfigFolder(t *testing.T) {
	fs := afero.NewMemMapFs()
	assert.Equal(t, "", ReadConfigFolder(fs, "/test"))

	writeConfig(t, fs, "/test", "  my-plans \r\n")
	assert.Equal(t, "my-plans", ReadConfigFolder(fs, "/test"))
}
