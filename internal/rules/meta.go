package rules

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spf13/afero"
)

// ErrNotText indicates a rule file whose content is not valid UTF-8.
var ErrNotText = errors.New("rule file is not valid UTF-8 text")

// RuleMeta is the registry entry describing one rule file.
type RuleMeta struct {
	ID             string   `json:"id"`
	Path           string   `json:"path"`
	RuleType       RuleType `json:"ruleType"`
	Description    *string  `json:"description,omitempty"`
	Globs          []string `json:"globs,omitzero"`
	FileExtensions []string `json:"fileExtensions,omitempty"`
	AlwaysApply    *bool    `json:"alwaysApply,omitempty"`
}

var globExtension = regexp.MustCompile(`\.([a-zA-Z0-9]+)$`)

// Extract reads the rule file at path and builds its registry entry.
// A relative path is resolved against root; the entry's Path is always
// relative to root and slash-separated.
func Extract(fs afero.Fs, root, path string) (RuleMeta, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return RuleMeta{}, fmt.Errorf("reading rule %s: %w", path, err)
	}
	if !utf8.Valid(data) {
		return RuleMeta{}, fmt.Errorf("%w: %s", ErrNotText, path)
	}

	rel, err := filepath.Rel(root, path)
	if err != nil {
		return RuleMeta{}, fmt.Errorf("resolving %s against project root: %w", path, err)
	}

	fm := ParseFrontMatter(string(data))

	return RuleMeta{
		ID:             RuleID(path),
		Path:           filepath.ToSlash(rel),
		RuleType:       Classify(fm),
		Description:    fm.Description,
		Globs:          fm.Globs,
		FileExtensions: FileExtensions(fm.Globs),
		AlwaysApply:    fm.AlwaysApply,
	}, nil
}

// RuleID returns the file name of path without its extension.
func RuleID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// FileExtensions derives lookup extensions such as ".ts" from glob patterns.
// Repeated extensions are kept. It returns nil when nothing matched.
func FileExtensions(globs []string) []string {
	var exts []string
	for _, g := range globs {
		if m := globExtension.FindStringSubmatch(g); m != nil {
			exts = append(exts, "."+m[1])
		}
	}
	return exts
}
