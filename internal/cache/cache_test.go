package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(q string) Key {
	return Key{
		IndexFingerprint: "fp1",
		NormalizedQuery:  q,
		RerankerEnabled:  true,
		TopK:             5,
		RetrieveM:        30,
		RerankN:          10,
		ComposerModelTag: "fallback",
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Put(testKey("hemoptysis"), "result-1")

	v, ok := c.Get(testKey("hemoptysis"))
	require.True(t, ok)
	assert.Equal(t, "result-1", v)
}

func TestDistinctKeysDoNotCollide(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Put(testKey("a"), "resultA")
	c.Put(Key{IndexFingerprint: "fp1", NormalizedQuery: "a", RerankerEnabled: false, TopK: 5, RetrieveM: 30, RerankN: 10, ComposerModelTag: "fallback"}, "resultB")

	v, ok := c.Get(testKey("a"))
	require.True(t, ok)
	assert.Equal(t, "resultA", v)
}

func TestExpiry(t *testing.T) {
	c := New[string](10, 10*time.Millisecond)
	c.Put(testKey("q"), "val")
	time.Sleep(30 * time.Millisecond)

	_, ok := c.Get(testKey("q"))
	assert.False(t, ok)
}

func TestEvictionAtCapacity(t *testing.T) {
	c := New[string](2, time.Minute)
	c.Put(testKey("a"), "1")
	c.Put(testKey("b"), "2")
	c.Put(testKey("c"), "3")

	assert.LessOrEqual(t, c.Len(), 2)
}

func TestPurge(t *testing.T) {
	c := New[string](10, time.Minute)
	c.Put(testKey("a"), "1")
	c.Purge()
	assert.Equal(t, 0, c.Len())
}
