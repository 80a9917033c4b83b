package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	casing "github.com/ai-guards/ai-guards/internal/util/strings"
)

// StatusInProgress is the status of a freshly generated plan.
const StatusInProgress = "in-progress"

// ErrPlanExists is returned by WritePlan when the target file is present.
var ErrPlanExists = errors.New("plan file already exists")

const planTemplate = `---
id: {{.ID}}
title: {{.Title}}
createdAt: {{.CreatedAt}}
author: {{.Author}}
status: {{.Status}}
---

## Scope

{{.Scope}}

## Functional Requirements

{{range .FunctionalReqs}}- {{.}}
{{end}}
## Non-Functional Requirements

{{range .NonFunctionalReqs}}- {{.}}
{{end}}
## Guidelines & Packages

{{range .Guidelines}}- {{.}}
{{end}}
## Threat Model (Stub)

{{range .ThreatModel}}- {{.}}
{{end}}
## Execution Plan

{{range .ExecutionPlan}}{{.}}
{{end}}`

var stepNumber = regexp.MustCompile(`^\d+\.?\s*`)

// Plan is an implementation plan document.
type Plan struct {
	ID                string
	Title             string
	Author            string
	CreatedAt         time.Time
	Status            string
	Scope             string
	FunctionalReqs    []string
	NonFunctionalReqs []string
	Guidelines        []string
	ThreatModel       []string
	ExecutionPlan     []string
}

// planView is what planTemplate renders.
type planView struct {
	ID                string
	Title             string
	Author            string
	CreatedAt         string
	Status            string
	Scope             string
	FunctionalReqs    []string
	NonFunctionalReqs []string
	Guidelines        []string
	ThreatModel       []string
	ExecutionPlan     []string
}

// NewPlanID returns "plan-" followed by eight random hex characters.
func NewPlanID() string {
	return "plan-" + uuid.NewString()[:8]
}

// NewPlan returns an in-progress plan with a fresh ID created now.
func NewPlan(title, author string) *Plan {
	return &Plan{
		ID:        NewPlanID(),
		Title:     strings.TrimSpace(title),
		Author:    strings.TrimSpace(author),
		CreatedAt: time.Now(),
		Status:    StatusInProgress,
	}
}

// SplitLines returns the non-blank lines of text, trimmed.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// SplitCommas returns the non-blank comma separated items of text, trimmed.
func SplitCommas(text string) []string {
	var out []string
	for _, item := range strings.Split(text, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Filename returns <id>-<kebab title>.md, or <id>.md for a title with no
// usable characters.
func (p *Plan) Filename() string {
	slug := casing.ToKebabCase(p.Title)
	if slug == "" {
		return p.ID + ".md"
	}
	return p.ID + "-" + slug + ".md"
}

// Render returns the plan as markdown with front matter.
func (p *Plan) Render() (string, error) {
	status := p.Status
	if status == "" {
		status = StatusInProgress
	}

	view := planView{
		ID:                p.ID,
		Title:             p.Title,
		Author:            p.Author,
		CreatedAt:         p.CreatedAt.Format(time.DateOnly),
		Status:            status,
		Scope:             strings.TrimSpace(p.Scope),
		FunctionalReqs:    bullets(p.FunctionalReqs),
		NonFunctionalReqs: bullets(p.NonFunctionalReqs),
		Guidelines:        bullets(p.Guidelines),
		ThreatModel:       bullets(p.ThreatModel),
		ExecutionPlan:     steps(p.ExecutionPlan),
	}

	return NewEngine().Render(planTemplate, view)
}

// WritePlan renders p into dir, creating dir if needed, and returns the path
// of the new file. An existing file is never overwritten.
func WritePlan(fs afero.Fs, dir string, p *Plan) (string, error) {
	content, err := p.Render()
	if err != nil {
		return "", fmt.Errorf("failed to render plan: %w", err)
	}

	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plans directory: %w", err)
	}

	path := filepath.Join(dir, p.Filename())
	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrPlanExists, path)
		}
		return "", fmt.Errorf("failed to create plan file: %w", err)
	}

	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to write plan file: %w", err)
	}

	return path, nil
}

// bullets trims items, drops blanks and strips a leading "-" so the rendered
// "- " marker is not doubled.
func bullets(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(item)
		item = strings.TrimSpace(strings.TrimPrefix(item, "-"))
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// steps numbers items from 1, replacing any numbering already present.
func steps(items []string) []string {
	var out []string
	for _, item := range items {
		item = strings.TrimSpace(stepNumber.ReplaceAllString(strings.TrimSpace(item), ""))
		if item != "" {
			out = append(out, strconv.Itoa(len(out)+1)+". "+item)
		}
	}
	return out
}
