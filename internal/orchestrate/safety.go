package orchestrate

import "strings"

// hedgeWords maps each safety flag to the substring that must appear in a
// drafted answer for it to count as addressed, per SPEC_FULL.md §2.3's
// safety hedge-word table, grounded on
// original_source/src/orchestrator/flow.py's check_safety.
var hedgeWords = map[SafetyFlag]string{
	FlagDosage:           "verify",
	FlagPediatric:        "pediatric",
	FlagContraindication: "contraindic",
	FlagAllergy:          "allerg",
	FlagPregnancy:        "pregnan",
}

// SafetyResult is the outcome of safety_check.
type SafetyResult struct {
	Warnings   []string
	NeedsReview bool
}

// safetyCheck implements spec.md §4.8's safety_check step: flags lacking
// a matching hedge word in the draft accrue a warning; more than two
// warnings sets needs_review.
func safetyCheck(draftText string, flags []SafetyFlag) SafetyResult {
	lower := strings.ToLower(draftText)
	var warnings []string
	for _, flag := range flags {
		if flag == FlagEmergency {
			continue // emergency is routed separately, not hedge-checked
		}
		hedge, ok := hedgeWords[flag]
		if !ok {
			continue
		}
		if !strings.Contains(lower, hedge) {
			warnings = append(warnings, "answer does not address safety flag: "+string(flag))
		}
	}
	return SafetyResult{
		Warnings:    warnings,
		NeedsReview: len(warnings) > 2,
	}
}
