package rules

import (
	"strings"
)

const frontMatterDelimiter = "---"

// FrontMatter holds the recognized keys of a rule's front-matter block.
// A nil pointer or nil slice means the key was absent. Globs is non-nil but
// empty when the key was present with an empty value.
type FrontMatter struct {
	Description *string
	Globs       []string
	AlwaysApply *bool
}

// ParseFrontMatter extracts the leading front-matter block from content.
//
// The block starts with a line containing only "---" and ends at the next
// such line. Both LF and CRLF line endings are accepted. A document with no
// block, or an opening delimiter that is never closed, yields a zero
// FrontMatter.
//
// Only description, globs and alwaysApply are recognized:
//
//	---
//	description: RPC service boilerplate
//	globs: **/*.ts, **/*.tsx
//	alwaysApply: false
//	---
func ParseFrontMatter(content string) FrontMatter {
	var fm FrontMatter

	block, ok := frontMatterBlock(content)
	if !ok {
		return fm
	}

	for _, line := range block {
		// A key with no colon has an empty value.
		key, value, _ := strings.Cut(line, ":")
		value = strings.TrimSpace(value)

		switch strings.TrimSpace(key) {
		case "description":
			desc := value
			fm.Description = &desc
		case "globs":
			fm.Globs = splitGlobs(value)
		case "alwaysApply":
			always := strings.EqualFold(value, "true")
			fm.AlwaysApply = &always
		}
	}

	return fm
}

// frontMatterBlock returns the lines between the opening and closing
// delimiters, with any carriage returns stripped.
func frontMatterBlock(content string) ([]string, bool) {
	content = strings.TrimPrefix(content, "\ufeff")

	lines := strings.Split(content, "\n")
	if len(lines) < 2 || !isDelimiter(lines[0]) {
		return nil, false
	}

	for i := 1; i < len(lines); i++ {
		if isDelimiter(lines[i]) {
			block := make([]string, 0, i-1)
			for _, l := range lines[1:i] {
				block = append(block, strings.TrimRight(l, "\r"))
			}
			return block, true
		}
	}

	return nil, false
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == frontMatterDelimiter
}

func splitGlobs(value string) []string {
	globs := []string{}
	if value == "" {
		return globs
	}
	for _, g := range strings.Split(value, ",") {
		if g = strings.TrimSpace(g); g != "" {
			globs = append(globs, g)
		}
	}
	return globs
}
