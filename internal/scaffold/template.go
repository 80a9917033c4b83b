// Package scaffold renders the files ai-guards writes into a project: the
// directory layout created by init and the plan documents created by plan.
package scaffold

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/spf13/afero"

	casing "github.com/ai-guards/ai-guards/internal/util/strings"
)

// ErrPathEscapesTarget is returned when a rendered path is absolute or
// resolves outside the target directory.
var ErrPathEscapesTarget = errors.New("path escapes target directory")

// Template describes a set of directories and files to create.
type Template struct {
	Name        string
	Description string
	Directories []string
	Files       []*File
}

// File is a single file in a Template. TargetPath is always rendered;
// Content only when Template is set.
type File struct {
	TargetPath   string
	Content      string
	Template     bool
	SkipIfExists bool
}

// Engine is the template rendering engine
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates a new template engine
func NewEngine() *Engine {
	return &Engine{
		funcs: template.FuncMap{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
			"title": func(s string) string {
				words := strings.Fields(s)
				for i, word := range words {
					words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
				}
				return strings.Join(words, " ")
			},
			"kebab": casing.ToKebabCase,
			"now":   time.Now,
			"year":  func() int { return time.Now().Year() },
		},
	}
}

// Execute creates tmpl's directories and files under targetDir and returns
// the paths it wrote, directories first, in declaration order. Files marked
// SkipIfExists that are already present are left alone and not reported.
func (e *Engine) Execute(fs afero.Fs, tmpl *Template, data any, targetDir string) ([]string, error) {
	if err := fs.MkdirAll(targetDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create target directory: %w", err)
	}

	var created []string

	for _, dir := range tmpl.Directories {
		fullPath, err := e.resolve(dir, data, targetDir)
		if err != nil {
			return created, fmt.Errorf("invalid directory path %s: %w", dir, err)
		}

		if ok, _ := afero.DirExists(fs, fullPath); ok {
			continue
		}
		if err := fs.MkdirAll(fullPath, 0o755); err != nil {
			return created, fmt.Errorf("failed to create directory %s: %w", fullPath, err)
		}
		created = append(created, fullPath)
	}

	for _, file := range tmpl.Files {
		fullPath, err := e.resolve(file.TargetPath, data, targetDir)
		if err != nil {
			return created, fmt.Errorf("invalid target path %s: %w", file.TargetPath, err)
		}

		if file.SkipIfExists {
			if ok, _ := afero.Exists(fs, fullPath); ok {
				continue
			}
		}

		content := file.Content
		if file.Template {
			content, err = e.Render(file.Content, data)
			if err != nil {
				return created, fmt.Errorf("failed to render template %s: %w", file.TargetPath, err)
			}
		}

		if err := fs.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return created, fmt.Errorf("failed to create parent directory for %s: %w", fullPath, err)
		}
		if err := afero.WriteFile(fs, fullPath, []byte(content), os.FileMode(0o644)); err != nil {
			return created, fmt.Errorf("failed to write file %s: %w", fullPath, err)
		}
		created = append(created, fullPath)
	}

	return created, nil
}

// Render renders a template string with data.
func (e *Engine) Render(tmplStr string, data any) (string, error) {
	tmpl, err := template.New("").Funcs(e.funcs).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// resolve renders a relative path and joins it to targetDir, rejecting
// results that would land outside targetDir.
func (e *Engine) resolve(path string, data any, targetDir string) (string, error) {
	rendered, err := e.Render(path, data)
	if err != nil {
		return "", err
	}

	rendered = filepath.Clean(filepath.FromSlash(rendered))
	if filepath.IsAbs(rendered) {
		return "", ErrPathEscapesTarget
	}

	fullPath := filepath.Join(targetDir, rendered)
	cleanTargetDir := filepath.Clean(targetDir) + string(filepath.Separator)
	if !strings.HasPrefix(fullPath+string(filepath.Separator), cleanTargetDir) {
		return "", ErrPathEscapesTarget
	}

	return fullPath, nil
}
