package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdempotence(t *testing.T) {
	n := New(85)
	queries := []string{
		"tef managment",
		"CPT code 31633",
		"EBUS-TBNA for mediastinal staging",
		"contraindications for bronchoscopy",
		"massive hemoptysis >300 ml, unstable",
	}
	for _, q := range queries {
		once := n.Normalize(q)
		twice := n.Normalize(once)
		assert.Equal(t, once, twice, "normalize must be idempotent for %q", q)
	}
}

func TestSynonymExpansion(t *testing.T) {
	n := New(85)
	got := n.Normalize("tef management options")
	assert.Contains(t, got, "tracheoesophageal fistula")
}

func TestFuzzyCorrection(t *testing.T) {
	n := New(85)
	got := n.Normalize("tef managment")
	assert.Contains(t, got, "management")
}

func TestDigitsNeverRewritten(t *testing.T) {
	n := New(85)
	got := n.Normalize("CPT code 31633")
	assert.Contains(t, got, "31633")
}

func TestLevenshteinRatio(t *testing.T) {
	assert.Equal(t, 100, levenshteinRatio("management", "management"))
	assert.Greater(t, levenshteinRatio("managment", "management"), 85)
	assert.Less(t, levenshteinRatio("banana", "xyz"), 50)
}
