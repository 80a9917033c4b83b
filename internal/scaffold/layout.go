package scaffold

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/ai-guards/ai-guards/internal/project"
)

// SampleRulePath is the rule init writes, relative to the project root.
const SampleRulePath = ".ai-guards/rules/guidelines/service-naming.md"

const sampleRule = `---
description: RPC Service boilerplate
globs:
alwaysApply: false
---

- Use our internal RPC pattern when defining services
- Always use snake_case for service names.

@service-template.ts
`

const sampleTemplate = `---
description: Reusable unit test template for components
type: auto
appliesTo: *.component.tsx
---

## Unit Test Template

Write tests using the project's test framework (e.g., Jest, Vitest).

**Checklist:**
- Cover all public functions and edge cases
- Use mocks for external calls
- Ensure at least 85% test coverage

` + "```ts" + `
describe('<ComponentName>', () => {
  it('should <expected behavior>', () => {
    // test logic here
  });
});
` + "```" + `
`

var folderNamePattern = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)

// LayoutOptions configures the project layout written by init.
type LayoutOptions struct {
	// PlansFolder overrides the default .plans folder. A non-default value
	// is recorded in .ai-guards-config.
	PlansFolder string
	// Force overwrites files that already exist.
	Force bool
}

type layoutData struct {
	PlansFolder string
}

// ValidateFolderName checks a plans folder name given to init.
func ValidateFolderName(name string) error {
	if name == "" || name == "." {
		return fmt.Errorf("folder name cannot be empty")
	}
	if strings.HasPrefix(name, "/") || path.IsAbs(name) {
		return fmt.Errorf("folder name must be relative: %s", name)
	}
	if !folderNamePattern.MatchString(name) {
		return fmt.Errorf("folder name can only contain letters, numbers, dots, hyphens, underscores and slashes: %s", name)
	}
	for _, segment := range strings.Split(name, "/") {
		if segment == ".." {
			return fmt.Errorf("folder name cannot contain '..': %s", name)
		}
	}
	return nil
}

// LayoutTemplate returns the directories and files init creates.
func LayoutTemplate(opts LayoutOptions) *Template {
	skip := !opts.Force

	tmpl := &Template{
		Name:        "ai-guards",
		Description: "ai-guards project layout",
		Directories: []string{
			".ai-guards/rules/guidelines",
			".ai-guards/rules/security",
			".ai-guards/rules/general",
			".ai-guards/templates",
			"{{.PlansFolder}}",
		},
		Files: []*File{
			{TargetPath: SampleRulePath, Content: sampleRule, SkipIfExists: skip},
			{TargetPath: ".ai-guards/templates/component-test.md", Content: sampleTemplate, SkipIfExists: skip},
		},
	}

	if custom(opts.PlansFolder) {
		tmpl.Files = append(tmpl.Files, &File{
			TargetPath:   project.ConfigFile,
			Content:      "{{.PlansFolder}}\n",
			Template:     true,
			SkipIfExists: skip,
		})
	}

	return tmpl
}

// WriteLayout validates opts and creates the project layout under root. It
// returns the paths it created.
func WriteLayout(fs afero.Fs, root string, opts LayoutOptions) ([]string, error) {
	folder := opts.PlansFolder
	if folder == "" {
		folder = project.PlansDir
	}
	if err := ValidateFolderName(folder); err != nil {
		return nil, err
	}
	opts.PlansFolder = folder

	return NewEngine().Execute(fs, LayoutTemplate(opts), layoutData{PlansFolder: folder}, root)
}

func custom(folder string) bool {
	return folder != "" && folder != project.PlansDir
}
