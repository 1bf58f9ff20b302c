package telemetry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAccumulatesSnapshot(t *testing.T) {
	m := New(10, nil)
	m.Record(Event{Query: "massive hemoptysis", QueryType: "emergency", ResultCount: 3, Latency: 20 * time.Millisecond})
	m.Record(Event{Query: "no results query", QueryType: "clinical", ResultCount: 0, Latency: 5 * time.Millisecond})

	snap := m.Snapshot()
	assert.Equal(t, int64(2), snap.TotalQueries)
	assert.Equal(t, int64(1), snap.ZeroResultCount)
	assert.Equal(t, []string{"no results query"}, snap.ZeroResultQueries)
	assert.Equal(t, int64(1), snap.QueryTypeCounts["emergency"])
}

func TestLatencyToBucket(t *testing.T) {
	assert.Equal(t, BucketP10, LatencyToBucket(5*time.Millisecond))
	assert.Equal(t, BucketP1000, LatencyToBucket(900*time.Millisecond))
}

func TestExtractTermsFiltersShortWords(t *testing.T) {
	terms := ExtractTerms("is it ok to do a bronchoscopy")
	assert.Contains(t, terms, "bronchoscopy")
	assert.NotContains(t, terms, "is")
}

func TestCircularBufferEvictsOldest(t *testing.T) {
	b := NewCircularBuffer[string](2)
	b.Add("a")
	b.Add("b")
	b.Add("c")
	assert.Equal(t, []string{"b", "c"}, b.Items())
}

func TestSQLiteSinkAppendsEvent(t *testing.T) {
	dir := t.TempDir()
	sink, err := NewSQLiteSink(filepath.Join(dir, "telemetry.db"))
	require.NoError(t, err)
	defer sink.Close()

	err = sink.Append(Event{Query: "q", QueryType: "clinical", ResultCount: 1, Timestamp: time.Now()})
	assert.NoError(t, err)
}

func TestRecordCallsSinkButDoesNotPropagateErrors(t *testing.T) {
	m := New(10, failingSink{})
	assert.NotPanics(t, func() {
		m.Record(Event{Query: "q", QueryType: "clinical"})
	})
}

type failingSink struct{}

func (failingSink) Append(Event) error { return errors.New("sink unavailable") }
