// Package registry maintains ai-guards.json, the JSON index of rule files.
//
// The registry is a denormalized view of the rules directory. AddRule
// upserts a single entry; Sync rebuilds the whole document from a scan.
// Writes always go through a temp file and a rename so readers never see a
// partially written registry.
package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ai-guards/ai-guards/internal/rules"
)

// Version is the only schema version this package reads or writes.
const Version = 1

// ErrInvalidRegistry indicates a registry document that failed validation.
var ErrInvalidRegistry = errors.New("invalid registry")

// Registry is the decoded ai-guards.json document.
type Registry struct {
	Version int              `json:"version"`
	Rules   []rules.RuleMeta `json:"rules"`
}

// Empty returns a registry with no rules.
func Empty() Registry {
	return Registry{Version: Version, Rules: []rules.RuleMeta{}}
}

// ValidationError describes why a registry document was rejected.
type ValidationError struct {
	Field  string // JSON path of the offending value, e.g. "rules[2].ruleType"
	Reason string
}

// Error returns a human-readable description including the field path.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return e.Field + ": " + e.Reason
}

// Unwrap lets callers match ErrInvalidRegistry with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidRegistry
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Decode parses and validates a registry document.
//
// version must be the number 1 and rules an array of objects that each carry
// string id and path fields and a known ruleType. Optional fields must have
// the right type when present. Unknown fields are ignored.
func Decode(data []byte) (Registry, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		return Registry{}, &ValidationError{Reason: "malformed JSON: " + err.Error()}
	}
	if doc == nil {
		return Registry{}, invalid("", "document must be an object")
	}

	if err := checkVersion(doc["version"]); err != nil {
		return Registry{}, err
	}

	rawRules, ok := doc["rules"]
	if !ok || isNull(rawRules) {
		return Registry{}, invalid("rules", "required")
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(rawRules, &entries); err != nil {
		return Registry{}, invalid("rules", "must be an array")
	}

	reg := Registry{Version: Version, Rules: make([]rules.RuleMeta, 0, len(entries))}
	for i, raw := range entries {
		meta, err := decodeRule(fmt.Sprintf("rules[%d]", i), raw)
		if err != nil {
			return Registry{}, err
		}
		reg.Rules = append(reg.Rules, meta)
	}

	return reg, nil
}

// Encode serializes the registry with two-space indentation and a trailing
// newline. The version is always written as 1 and a nil rule list as [].
func Encode(reg Registry) ([]byte, error) {
	reg.Version = Version
	if reg.Rules == nil {
		reg.Rules = []rules.RuleMeta{}
	}

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling registry: %w", err)
	}
	return append(data, '\n'), nil
}

func checkVersion(raw json.RawMessage) error {
	if raw == nil {
		return invalid("version", "required")
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || isNull(raw) {
		return invalid("version", "must be a number")
	}
	if v != Version {
		return invalid("version", "unsupported version %s", string(raw))
	}
	return nil
}

var (
	requiredStrings = []string{"id", "path", "ruleType"}
	optionalString  = []string{"description"}
	optionalLists   = []string{"globs", "fileExtensions"}
)

func decodeRule(field string, raw json.RawMessage) (rules.RuleMeta, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return rules.RuleMeta{}, invalid(field, "must be an object")
	}

	for _, key := range requiredStrings {
		v, ok := obj[key]
		if !ok {
			return rules.RuleMeta{}, invalid(field+"."+key, "required")
		}
		if !isString(v) {
			return rules.RuleMeta{}, invalid(field+"."+key, "must be a string")
		}
	}
	for _, key := range optionalString {
		if v, ok := obj[key]; ok && !isString(v) {
			return rules.RuleMeta{}, invalid(field+"."+key, "must be a string")
		}
	}
	for _, key := range optionalLists {
		if v, ok := obj[key]; ok && !isStringList(v) {
			return rules.RuleMeta{}, invalid(field+"."+key, "must be an array of strings")
		}
	}
	if v, ok := obj["alwaysApply"]; ok {
		var b bool
		if isNull(v) || json.Unmarshal(v, &b) != nil {
			return rules.RuleMeta{}, invalid(field+".alwaysApply", "must be a boolean")
		}
	}

	var meta rules.RuleMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return rules.RuleMeta{}, invalid(field, "%v", err)
	}
	if !meta.RuleType.Valid() {
		return rules.RuleMeta{}, invalid(field+".ruleType", "unknown rule type %q", meta.RuleType)
	}

	return meta, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isString(raw json.RawMessage) bool {
	var s string
	return !isNull(raw) && json.Unmarshal(raw, &s) == nil
}

func isStringList(raw json.RawMessage) bool {
	var items []json.RawMessage
	if isNull(raw) || json.Unmarshal(raw, &items) != nil {
		return false
	}
	for _, item := range items {
		if !isString(item) {
			return false
		}
	}
	return true
}
