package metrics

import "time"

// PageKind labels the two kinds of page a run produces.
type PageKind string

const (
	PageDetail  PageKind = "detail"
	PageListing PageKind = "listing"
)

// ResultLabel enumerates result categories for counters.
type ResultLabel string

const (
	ResultSuccess ResultLabel = "success"
	ResultFailed  ResultLabel = "failed"
)

// Recorder defines observability hooks for a generation run. Implementations
// may forward to Prometheus or anything else; NoopRecorder is the default.
type Recorder interface {
	SetRecords(n int)
	ObserveRenderDuration(kind PageKind, d time.Duration)
	IncPageResult(kind PageKind, result ResultLabel)
	IncSlugCollision()
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(result ResultLabel)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) SetRecords(int)                               {}
func (NoopRecorder) ObserveRenderDuration(PageKind, time.Duration) {}
func (NoopRecorder) IncPageResult(PageKind, ResultLabel)           {}
func (NoopRecorder) IncSlugCollision()                             {}
func (NoopRecorder) ObserveRunDuration(time.Duration)              {}
func (NoopRecorder) IncRunOutcome(ResultLabel)                     {}
