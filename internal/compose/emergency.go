package compose

import (
	"regexp"
	"strings"
)

// emergencyProtocols are the hardcoded protocol excerpts of SPEC_FULL.md
// §2.3, carried verbatim in meaning from
// original_source/src/orchestrator/flow.py's emergency_response.
var emergencyProtocols = map[string]string{
	"massive_hemoptysis": "IMMEDIATE ACTIONS:\n" +
		"1. Place patient in lateral decubitus position (bleeding side down)\n" +
		"2. Secure airway - consider intubation with large ETT (>=8.0)\n" +
		"3. Initiate bronchoscopy for localization\n" +
		"4. Consider balloon tamponade for temporary control\n" +
		"5. Prepare for bronchial artery embolization\n" +
		"6. ICU admission required",
	"foreign_body": "IMMEDIATE ACTIONS:\n" +
		"1. Maintain spontaneous ventilation if possible\n" +
		"2. Prepare rigid bronchoscopy setup\n" +
		"3. Have optical forceps ready\n" +
		"4. Ensure backup surgical team available\n" +
		"5. Consider general anesthesia with muscle relaxation",
	"tension_pneumothorax": "IMMEDIATE ACTIONS:\n" +
		"1. Needle decompression 2nd ICS MCL\n" +
		"2. Prepare for chest tube insertion\n" +
		"3. 100% oxygen\n" +
		"4. IV access and fluid resuscitation\n" +
		"5. Monitor for re-expansion pulmonary edema",
}

var (
	massiveHemoptysisPattern   = regexp.MustCompile(`(?i)massive\s+hemoptysis`)
	foreignBodyPattern         = regexp.MustCompile(`(?i)foreign\s+body`)
	tensionPneumothoraxPattern = regexp.MustCompile(`(?i)tension\s+pneumothorax`)
)

// classifyEmergencyType maps a query to one of the known protocol keys,
// or "" when none match closely enough to have a canned protocol.
func classifyEmergencyType(query string) string {
	switch {
	case massiveHemoptysisPattern.MatchString(query):
		return "massive_hemoptysis"
	case foreignBodyPattern.MatchString(query):
		return "foreign_body"
	case tensionPneumothoraxPattern.MatchString(query):
		return "tension_pneumothorax"
	default:
		return ""
	}
}

// emergencyFallbackText renders the canned protocol for query, or a
// generic emergency notice when no specific protocol matches.
func emergencyFallbackText(query string) string {
	emergencyType := classifyEmergencyType(query)
	protocol, ok := emergencyProtocols[emergencyType]
	if !ok {
		return "EMERGENCY - protocol not found for this presentation. Escalate to an in-person evaluation immediately."
	}
	return "EMERGENCY RESPONSE - " + strings.ToUpper(emergencyType) + "\n\n" + protocol
}
