// Package ui formats human-facing CLI output: errors with suggestions,
// success lines and simple tables.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a message.
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// MessageOptions configures FormatMessage.
type MessageOptions struct {
	Level        Level
	Context      string
	Problem      string
	Consequence  string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatMessage renders a message with optional suggestions and follow-up
// commands:
//
//	✗ RULE NOT FOUND: Cannot find rule 'secrts'.
//
//	   Did you mean: secrets?
//
//	   → List rules: ai-guards rules list
func FormatMessage(opts MessageOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case LevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "!"
	case LevelInfo:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "i"
	default:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "✗"
	}

	accent := color.New(color.FgYellow)
	help := color.New(color.FgCyan)
	if opts.NoColor {
		for _, c := range []*color.Color{headerColor, bodyColor, accent, help} {
			c.DisableColor()
		}
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), opts.Problem)
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, opts.Problem)
	}

	if opts.Consequence != "" {
		b.WriteString("\n")
		bodyColor.Fprintf(&b, "   %s\n", opts.Consequence)
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		accent.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		for _, cmd := range opts.HelpCommands {
			help.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// WriteMessage writes a formatted message to w.
func WriteMessage(w io.Writer, opts MessageOptions) {
	fmt.Fprint(w, FormatMessage(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// RuleNotFound reports an unknown rule id with close matches.
func RuleNotFound(id string, suggestions []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelError,
		Context:     "rule not found",
		Problem:     fmt.Sprintf("Cannot find rule '%s'.", id),
		Suggestions: suggestions,
		HelpCommands: []string{
			"List rules: ai-guards rules list",
			"Rebuild the registry: ai-guards rules sync",
		},
		NoColor: noColor,
	})
}

// NotInitialized reports a directory with no ai-guards project above it.
func NotInitialized(dir string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:        LevelError,
		Context:      "not initialized",
		Problem:      fmt.Sprintf("No ai-guards project found at or above %s.", dir),
		HelpCommands: []string{"Initialize a project: ai-guards init"},
		NoColor:      noColor,
	})
}

// SyncFailures warns about rule files that could not be indexed.
func SyncFailures(paths []string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:       LevelWarning,
		Problem:     fmt.Sprintf("%d rule file(s) could not be indexed: %s", len(paths), strings.Join(paths, ", ")),
		Consequence: "They are left out of the registry until they are fixed and synced again.",
		NoColor:     noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:   LevelWarning,
		Problem: message,
		NoColor: noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatMessage(MessageOptions{
		Level:   LevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
