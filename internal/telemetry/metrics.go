package telemetry

import (
	"strings"
	"sync"
	"time"
)

// LatencyBucket is a coarse per-query latency histogram bucket, ported
// from the teacher's LatencyToBucket thresholds.
type LatencyBucket string

const (
	BucketP10   LatencyBucket = "p10"
	BucketP50   LatencyBucket = "p50"
	BucketP100  LatencyBucket = "p100"
	BucketP500  LatencyBucket = "p500"
	BucketP1000 LatencyBucket = "p1000"
)

// LatencyToBucket classifies a duration into its histogram bucket.
func LatencyToBucket(d time.Duration) LatencyBucket {
	ms := d.Milliseconds()
	switch {
	case ms < 10:
		return BucketP10
	case ms < 50:
		return BucketP50
	case ms < 100:
		return BucketP100
	case ms < 500:
		return BucketP500
	default:
		return BucketP1000
	}
}

// ExtractTerms returns lowercased query terms of length >= 3, for top-term
// tracking, ported verbatim from the teacher's ExtractTerms.
func ExtractTerms(query string) []string {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}
	var terms []string
	for _, w := range strings.Fields(query) {
		if len(w) >= 3 {
			terms = append(terms, w)
		}
	}
	return terms
}

// Event is one processed query's observability record, per spec.md §6.
type Event struct {
	Query             string
	QueryType         string
	IsEmergency       bool
	RerankerUsed      bool
	CacheHit          bool
	SemanticSkipped   bool
	ResultCount       int
	Top1AuthorityTier string
	Top1EvidenceLevel string
	NeedsReview       bool
	Warnings          []string
	Latency           time.Duration
	Timestamp         time.Time
}

func (e Event) isZeroResult() bool { return e.ResultCount == 0 }

// Snapshot is an immutable view over accumulated metrics.
type Snapshot struct {
	QueryTypeCounts     map[string]int64
	TopTerms            map[string]int64
	ZeroResultQueries   []string
	LatencyDistribution map[LatencyBucket]int64
	TotalQueries        int64
	ZeroResultCount     int64
	RerankerUseCount    int64
	CacheHitCount       int64
	NeedsReviewCount    int64
	Since               time.Time
}

// Metrics accumulates Events in bounded in-memory structures. Thread-safe.
type Metrics struct {
	mu sync.RWMutex

	queryTypes       map[string]int64
	topTerms         map[string]int64
	zeroResults      *CircularBuffer[string]
	latencies        map[LatencyBucket]int64
	totalQueries     int64
	zeroResultCount  int64
	rerankerUseCount int64
	cacheHitCount    int64
	needsReviewCount int64
	startTime        time.Time

	sink Sink
}

// Sink is an optional, best-effort advisory append target. Failures are
// swallowed: telemetry must never affect retrieval correctness.
type Sink interface {
	Append(Event) error
}

// New creates a Metrics collector. sink may be nil.
func New(zeroResultCapacity int, sink Sink) *Metrics {
	if zeroResultCapacity <= 0 {
		zeroResultCapacity = 100
	}
	return &Metrics{
		queryTypes:  make(map[string]int64),
		topTerms:    make(map[string]int64),
		zeroResults: NewCircularBuffer[string](zeroResultCapacity),
		latencies:   make(map[LatencyBucket]int64),
		startTime:   time.Now(),
		sink:        sink,
	}
}

// Record captures one query's telemetry. The sink write, if any, runs
// synchronously after the in-memory update; its error is discarded.
func (m *Metrics) Record(e Event) {
	m.mu.Lock()
	m.totalQueries++
	m.queryTypes[e.QueryType]++
	m.latencies[LatencyToBucket(e.Latency)]++
	if e.isZeroResult() {
		m.zeroResultCount++
		m.zeroResults.Add(e.Query)
	}
	if e.RerankerUsed {
		m.rerankerUseCount++
	}
	if e.CacheHit {
		m.cacheHitCount++
	}
	if e.NeedsReview {
		m.needsReviewCount++
	}
	for _, term := range ExtractTerms(e.Query) {
		m.topTerms[term]++
	}
	m.mu.Unlock()

	if m.sink != nil {
		_ = m.sink.Append(e)
	}
}

// Snapshot returns the current accumulated state.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	queryTypes := make(map[string]int64, len(m.queryTypes))
	for k, v := range m.queryTypes {
		queryTypes[k] = v
	}
	topTerms := make(map[string]int64, len(m.topTerms))
	for k, v := range m.topTerms {
		topTerms[k] = v
	}
	latencies := make(map[LatencyBucket]int64, len(m.latencies))
	for k, v := range m.latencies {
		latencies[k] = v
	}

	return Snapshot{
		QueryTypeCounts:     queryTypes,
		TopTerms:            topTerms,
		ZeroResultQueries:   m.zeroResults.Items(),
		LatencyDistribution: latencies,
		TotalQueries:        m.totalQueries,
		ZeroResultCount:     m.zeroResultCount,
		RerankerUseCount:    m.rerankerUseCount,
		CacheHitCount:       m.cacheHitCount,
		NeedsReviewCount:    m.needsReviewCount,
		Since:               m.startTime,
	}
}
