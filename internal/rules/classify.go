package rules

// RuleType describes when a rule should be applied.
type RuleType string

const (
	RuleTypeAlways       RuleType = "always"
	RuleTypeAutoAttached RuleType = "auto-attached"
	// RuleTypeAgentRequested is never inferred from front matter; it is kept
	// so registries that assign it by hand stay valid.
	RuleTypeAgentRequested RuleType = "agent-requested"
	RuleTypeManual         RuleType = "manual"
)

// RuleTypes lists every valid rule type.
var RuleTypes = []RuleType{
	RuleTypeAlways,
	RuleTypeAutoAttached,
	RuleTypeAgentRequested,
	RuleTypeManual,
}

// Valid reports whether t is one of the known rule types.
func (t RuleType) Valid() bool {
	for _, known := range RuleTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Classify derives the rule type from parsed front matter.
// alwaysApply wins over globs; a rule with neither is manual.
func Classify(fm FrontMatter) RuleType {
	if fm.AlwaysApply != nil && *fm.AlwaysApply {
		return RuleTypeAlways
	}
	if len(fm.Globs) > 0 {
		return RuleTypeAutoAttached
	}
	return RuleTypeManual
}
