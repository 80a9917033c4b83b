// Package project locates an ai-guards project and its plans directory.
//
// Three layouts are recognized, in priority order: a custom plans folder
// named in .ai-guards-config, the current .plans folder, and the legacy
// .ai-guards/plans folder. Lookups walk upward from a starting directory but
// never more than MaxSearchDepth levels.
package project

import (
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	// MaxSearchDepth bounds upward directory walks, counting the start directory.
	MaxSearchDepth = 10

	// ConfigFile names a custom plans folder, one line of plain text.
	ConfigFile = ".ai-guards-config"
	// PlansDir is the default plans folder.
	PlansDir = ".plans"
	// GuardsDir holds rules, templates and, in the legacy layout, plans.
	GuardsDir = ".ai-guards"
	// LegacyPlansDir is the plans folder used before .plans existed.
	LegacyPlansDir = ".ai-guards/plans"
)

// FindPlansDirectory walks upward from start and returns the first plans
// directory found, preferring the closest level. The second result is false
// when no plans directory exists within MaxSearchDepth levels.
func FindPlansDirectory(fs afero.Fs, start string) (string, bool) {
	found := ""
	walkUp(start, func(dir string) bool {
		if custom, ok := customPlansPath(fs, dir); ok {
			found = custom
			return true
		}
		for _, candidate := range []string{PlansDir, LegacyPlansDir} {
			path := filepath.Join(dir, filepath.FromSlash(candidate))
			if exists(fs, path) {
				found = path
				return true
			}
		}
		return false
	})
	return found, found != ""
}

// FindProjectRoot walks upward from start and returns the closest directory
// containing .plans or .ai-guards. The second result is false when none is
// found within MaxSearchDepth levels.
func FindProjectRoot(fs afero.Fs, start string) (string, bool) {
	found := ""
	walkUp(start, func(dir string) bool {
		if exists(fs, filepath.Join(dir, PlansDir)) || exists(fs, filepath.Join(dir, GuardsDir)) {
			found = dir
			return true
		}
		return false
	})
	return found, found != ""
}

// DefaultPlansPath returns where init creates the plans folder.
func DefaultPlansPath(root, folder string) string {
	if folder != "" {
		return filepath.Join(root, folder)
	}
	return filepath.Join(root, PlansDir)
}

// IsInitialized reports whether root already holds an ai-guards layout.
func IsInitialized(fs afero.Fs, root string) bool {
	if _, ok := customPlansPath(fs, root); ok {
		return true
	}
	return exists(fs, filepath.Join(root, PlansDir)) || exists(fs, filepath.Join(root, GuardsDir))
}

// ReadConfigFolder returns the trimmed folder name recorded in root's
// .ai-guards-config, or "" when the file is absent, unreadable or blank.
func ReadConfigFolder(fs afero.Fs, root string) string {
	name, _ := readConfig(fs, root)
	return name
}

func readConfig(fs afero.Fs, dir string) (string, bool) {
	data, err := afero.ReadFile(fs, filepath.Join(dir, ConfigFile))
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

// customPlansPath resolves the folder named by dir's config file. A blank
// config names dir itself.
func customPlansPath(fs afero.Fs, dir string) (string, bool) {
	name, ok := readConfig(fs, dir)
	if !ok {
		return "", false
	}
	path := filepath.Join(dir, name)
	if !exists(fs, path) {
		return "", false
	}
	return path, true
}

// walkUp calls visit for start and each parent until visit returns true, the
// file system root is reached, or MaxSearchDepth levels have been checked.
func walkUp(start string, visit func(dir string) bool) {
	dir := filepath.Clean(start)
	for i := 0; i < MaxSearchDepth; i++ {
		if visit(dir) {
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func exists(fs afero.Fs, path string) bool {
	ok, err := afero.Exists(fs, path)
	return err == nil && ok
}
