package telemetry

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStageRun(t *testing.T) {
	before := testutil.ToFloat64(stageRunsTotal.WithLabelValues("test-stage", StatusError))

	RecordStageRun("test-stage", errors.New("boom"), time.Second)
	RecordStageRun("test-stage", nil, time.Second)

	assert.Equal(t, before+1, testutil.ToFloat64(stageRunsTotal.WithLabelValues("test-stage", StatusError)))
	assert.GreaterOrEqual(t, testutil.ToFloat64(stageRunsTotal.WithLabelValues("test-stage", StatusSuccess)), 1.0)
}

func TestRecordRows(t *testing.T) {
	before := testutil.ToFloat64(rowsTotal.WithLabelValues("rows-stage", "skipped"))
	RecordRows("rows-stage", 5, 3, 2)
	assert.Equal(t, before+2, testutil.ToFloat64(rowsTotal.WithLabelValues("rows-stage", "skipped")))
}

func TestGauges(t *testing.T) {
	SetSnapshot(map[string]float64{"total_items": 7})
	SetViralScore("LinkedIn", 0.42)

	assert.Equal(t, 7.0, testutil.ToFloat64(snapshotGauge.WithLabelValues("total_items")))
	assert.Equal(t, 0.42, testutil.ToFloat64(viralScoreGauge.WithLabelValues("LinkedIn")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	RecordStageRun("exposed", nil, time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "content_optimizer_stage_runs_total")
}
