package compose

import (
	"fmt"
	"regexp"
	"strings"
)

// alreadyFormattedAuthor matches an author already in "Surname JA" form.
var alreadyFormattedAuthor = regexp.MustCompile(`^[A-Z][a-z]+ [A-Z]{1,2}$`)

// formatAuthorAMA renders a single author name in AMA style ("Surname
// Initials"), ported from
// original_source/src/orchestrator/smart_citations.py's format_author_ama.
func formatAuthorAMA(author string) string {
	author = strings.TrimSpace(author)
	if author == "" {
		return "Unknown"
	}
	if alreadyFormattedAuthor.MatchString(author) {
		return author
	}

	parts := strings.Fields(author)
	switch len(parts) {
	case 1:
		return parts[0]
	case 2:
		return fmt.Sprintf("%s %s", parts[1], strings.ToUpper(parts[0][:1]))
	default:
		last := parts[len(parts)-1]
		var initials strings.Builder
		for _, p := range parts[:len(parts)-1] {
			initials.WriteString(strings.ToUpper(p[:1]))
		}
		return fmt.Sprintf("%s %s", last, initials.String())
	}
}

// authorStringAMA renders the AMA-style author block for a citation,
// abbreviating to "et al" past three authors, per
// smart_citations.py's citation-building loop.
func authorStringAMA(authors []string, docID string) string {
	switch {
	case len(authors) == 0:
		return extractAuthorFromDocID(docID) + " et al"
	case len(authors) == 1:
		return formatAuthorAMA(authors[0])
	case len(authors) == 2:
		return fmt.Sprintf("%s, %s", formatAuthorAMA(authors[0]), formatAuthorAMA(authors[1]))
	default:
		firstThree := make([]string, 0, 3)
		for _, a := range authors[:3] {
			firstThree = append(firstThree, formatAuthorAMA(a))
		}
		if len(authors) > 3 {
			return strings.Join(firstThree, ", ") + ", et al"
		}
		return strings.Join(firstThree, ", ")
	}
}

var (
	authorYearDashPattern      = regexp.MustCompile(`^([A-Za-z]+)[-_](\d{4})[-_]`)
	leadingAlphaDelimPattern   = regexp.MustCompile(`^[A-Za-z]+$`)
)

// extractAuthorFromDocID recovers an author surname from doc_id naming
// conventions like "Schweigert-2019-Title" when no explicit author list
// was ingested, ported from smart_citations.py's extract_author_name.
func extractAuthorFromDocID(docID string) string {
	docID = strings.TrimSuffix(docID, ".pdf")
	docID = strings.TrimSuffix(docID, ".PDF")

	if m := authorYearDashPattern.FindStringSubmatch(docID); m != nil {
		return capitalize(m[1])
	}
	for _, delim := range []string{"-", "_", " "} {
		if strings.Contains(docID, delim) {
			first := strings.SplitN(docID, delim, 2)[0]
			if leadingAlphaDelimPattern.MatchString(first) {
				return capitalize(first)
			}
		}
	}
	return "Unknown"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}

// BuildAMACitation renders a single AMA-style citation line for a chunk's
// bibliographic fields.
func BuildAMACitation(authors []string, docID, title, journal, volume, pages, doi string, year int) string {
	authorStr := authorStringAMA(authors, docID)
	if journal == "" {
		return fmt.Sprintf("%s. %s. %d.", authorStr, title, year)
	}
	text := fmt.Sprintf("%s. %s. %s. %d", authorStr, title, journal, year)
	switch {
	case volume != "" && pages != "":
		text += fmt.Sprintf(";%s:%s", volume, pages)
	case volume != "":
		text += ";" + volume
	}
	if doi != "" {
		text += ". doi:" + doi
	}
	return text + "."
}
