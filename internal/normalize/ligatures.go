package normalize

import "strings"

// ligatureTable maps common PDF-extraction ligature artifacts to their
// expanded ASCII form. Grounded on the "ligature repair" step named in
// spec.md §4.1; the table covers the typographic ligatures most often
// left behind by PDF text extraction in the ingested medical literature.
var ligatureTable = map[string]string{
	"ﬀ": "ff",
	"ﬁ": "fi",
	"ﬂ": "fl",
	"ﬃ": "ffi",
	"ﬄ": "ffl",
	"ﬅ": "st",
	"ﬆ": "st",
	"æ": "ae",
	"œ": "oe",
}

func repairLigatures(s string) string {
	for lig, expanded := range ligatureTable {
		s = strings.ReplaceAll(s, lig, expanded)
	}
	return s
}
