package retrieve

import "regexp"

// emergencyPatterns mirrors original_source/src/retrieval/hybrid_retriever.py's
// EMERGENCY_PATTERNS exactly, per SPEC_FULL.md §2.3. The Query Orchestrator
// (internal/orchestrate) reuses IsEmergency so classification and retrieval
// never disagree about what counts as an emergency.
var emergencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bmassive\s+hemoptysis\b`),
	regexp.MustCompile(`\b(?:bleeding|hemorrhage)\s*>?\s*200\s*ml\b`),
	regexp.MustCompile(`\bforeign\s+body\s+(?:aspiration|removal)\b`),
	regexp.MustCompile(`\btension\s+pneumothorax\b`),
	regexp.MustCompile(`\bairway\s+(?:obstruction|emergency)\b`),
	regexp.MustCompile(`\bcardiac\s+arrest\b`),
	regexp.MustCompile(`\brespiratory\s+failure\b`),
	regexp.MustCompile(`\bemergency\s+(?:airway|intubation)\b`),
}

// IsEmergency reports whether text matches any emergency pattern. Callers
// pass both the raw and normalized forms of a query, per spec.md §4.7 step 1.
func IsEmergency(text string) bool {
	for _, p := range emergencyPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

// cptDigitPattern extracts 5-digit CPT-code-shaped runs from a query, per
// spec.md §4.7 step 3's exact-match candidate generation.
var cptDigitPattern = regexp.MustCompile(`\b\d{5}\b`)
