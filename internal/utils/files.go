package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// RuleFileExtensions are the extensions picked up as rule sources.
var RuleFileExtensions = []string{".md", ".markdown"}

// IsRuleFile reports whether path has a rule source extension.
func IsRuleFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range RuleFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsHidden reports whether the base name of path starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// FindRuleFiles recursively finds all markdown files in the specified directory.
// Files are returned in lexical walk order. A missing directory yields no files.
//
// Hidden files and directories below dir are skipped. Entries that cannot be
// read are logged and skipped; only a failure on dir itself is returned.
func FindRuleFiles(fs afero.Fs, dir string, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := fs.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	root := filepath.Clean(dir)
	var files []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if path != root && IsHidden(path) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		// Skip directories
		if info.IsDir() {
			return nil
		}

		if IsRuleFile(path) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}
