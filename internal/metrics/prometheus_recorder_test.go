package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.SetRecords(3)
	pr.ObserveRenderDuration(PageDetail, 15*time.Millisecond)
	pr.IncPageResult(PageDetail, ResultSuccess)
	pr.IncPageResult(PageDetail, ResultSuccess)
	pr.IncPageResult(PageListing, ResultFailed)
	pr.IncSlugCollision()
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncRunOutcome(ResultFailed)

	assert.InDelta(t, 3, testutil.ToFloat64(pr.records), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(pr.pageResults.WithLabelValues("detail", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.pageResults.WithLabelValues("listing", "failed")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.slugCollisions), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(pr.runOutcomes.WithLabelValues("failed")), 0)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs)
}

func TestPrometheusRecorderNilRegistry(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	require.NotNil(t, pr.Registry())
}

func TestWriteTextfile(t *testing.T) {
	pr := NewPrometheusRecorder(nil)
	pr.IncPageResult(PageListing, ResultSuccess)

	path := filepath.Join(t.TempDir(), "pagegen.prom")
	require.NoError(t, pr.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pagegen_pages_total{kind="listing",result="success"} 1`)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	assert.NotPanics(t, func() {
		pr.SetRecords(1)
		pr.IncPageResult(PageDetail, ResultSuccess)
		pr.IncSlugCollision()
		pr.IncRunOutcome(ResultSuccess)
	})
}
