// Package normalize implements the Text Normalizer component of spec.md
// §4.1: canonicalizing queries and stored text via ligature repair,
// synonym expansion, and fuzzy vocabulary correction.
package normalize

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Normalizer holds the domain vocabulary and synonym table. It is
// stateless after construction and safe for concurrent use by multiple
// query goroutines, matching the "immutable for process lifetime" model
// in spec.md §5.
type Normalizer struct {
	vocab       map[string]struct{}
	minFuzzy    int
	expansions  []expansion
}

type expansion struct {
	pattern *regexp.Regexp
	canon   string
}

var digitsOnly = regexp.MustCompile(`^[0-9]+$`)

// New builds a Normalizer from the default medical synonym table and
// vocabulary. minFuzzy is the minimum similarity score (0-100) for fuzzy
// token correction; spec.md §4.1 and §9 treat 85 as the default, exposed
// here as a parameter per the Open Questions note on fuzzy thresholds.
func New(minFuzzy int) *Normalizer {
	vocab := make(map[string]struct{}, len(baseVocabulary))
	for _, w := range baseVocabulary {
		vocab[w] = struct{}{}
	}

	// Collect every canonical+surface form across the synonym table, then
	// sort descending by length so the longest match wins, per spec.md
	// §4.1(d)'s "iterate its surface forms in descending length" rule.
	// Ties are broken by form, then canonical term, so the order does not
	// depend on map iteration.
	type formCanon struct {
		form  string
		canon string
	}
	var forms []formCanon
	for canon, syns := range synonymTable {
		seen := map[string]struct{}{canon: {}}
		forms = append(forms, formCanon{canon, canon})
		for _, s := range syns {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			forms = append(forms, formCanon{s, canon})
		}
		// Vocabulary also accepts canonical multi-word terms as known.
		for _, word := range strings.Fields(canon) {
			vocab[word] = struct{}{}
		}
	}
	sort.Slice(forms, func(i, j int) bool {
		if len(forms[i].form) != len(forms[j].form) {
			return len(forms[i].form) > len(forms[j].form)
		}
		if forms[i].form != forms[j].form {
			return forms[i].form < forms[j].form
		}
		return forms[i].canon < forms[j].canon
	})

	expansions := make([]expansion, 0, len(forms))
	for _, f := range forms {
		if f.form == f.canon {
			// A canonical form matching itself is a no-op rewrite; skip it
			// to avoid wasted regex work, but still register its words.
			continue
		}
		pattern := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(f.form) + `\b`)
		expansions = append(expansions, expansion{pattern: pattern, canon: f.canon})
	}

	return &Normalizer{vocab: vocab, minFuzzy: minFuzzy, expansions: expansions}
}

// Normalize applies the pipeline from spec.md §4.1 and is deterministic
// and idempotent: Normalize(Normalize(x)) == Normalize(x).
func (n *Normalizer) Normalize(text string) string {
	s := strings.ToLower(text)
	s = norm.NFKC.String(s)
	s = repairLigatures(s)
	s = n.expandSynonyms(s)
	s = n.fuzzyFixTokens(s)
	return strings.TrimSpace(s)
}

func (n *Normalizer) expandSynonyms(s string) string {
	padded := " " + s + " "
	for _, e := range n.expansions {
		padded = e.pattern.ReplaceAllString(padded, e.canon)
	}
	return strings.TrimSpace(padded)
}

func (n *Normalizer) fuzzyFixTokens(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = n.fixToken(w)
	}
	return strings.Join(words, " ")
}

func (n *Normalizer) fixToken(word string) string {
	if word == "" {
		return word
	}
	if isPreservedNumeric(word) {
		return word
	}
	if _, ok := n.vocab[word]; ok {
		return word
	}
	if len(n.vocab) == 0 {
		return word
	}

	best := word
	bestScore := -1
	for v := range n.vocab {
		score := levenshteinRatio(word, v)
		if score > bestScore || (score == bestScore && v < best) {
			bestScore = score
			best = v
		}
	}
	if bestScore >= n.minFuzzy {
		return best
	}
	return word
}

// isPreservedNumeric reports whether word must be left untouched because
// it is a numeric token — CPT codes are 5-digit runs and must never be
// fuzzy-corrected per spec.md §4.1.
func isPreservedNumeric(word string) bool {
	core := strings.Trim(word, ".,;:()")
	return core != "" && digitsOnly.MatchString(core)
}
