package service

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/timetable-planner-api/internal/models"
	appErrors "github.com/noah-isme/timetable-planner-api/pkg/errors"
)

type mockCacheRepo struct {
	values   map[string]interface{}
	getErr   error
	patterns []string
	ttl      time.Duration
}

func (m *mockCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	value, ok := m.values[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*string)) = value.(string)
	return nil
}

func (m *mockCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.values[key] = value
	m.ttl = ttl
	return nil
}

func (m *mockCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.patterns = append(m.patterns, pattern)
	return nil
}

func TestCacheServiceHitMissAndMetrics(t *testing.T) {
	repo := &mockCacheRepo{values: map[string]interface{}{}}
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var out string
	hit, err := svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Equal(t, time.Minute, repo.ttl)

	hit, err = svc.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "v", out)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 0.001)

	repo.getErr = errors.New("connection refused")
	hit, err = svc.Get(ctx, "k", &out)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestCacheServiceInvalidateTerm(t *testing.T) {
	repo := &mockCacheRepo{values: map[string]interface{}{}}
	svc := NewCacheService(repo, nil, 0, nil, true)

	require.NoError(t, svc.InvalidateTerm(context.Background(), "T1"))
	require.Len(t, repo.patterns, 1)
	assert.Contains(t, repo.patterns[0], "suggest:T1:*")
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &mockCacheRepo{values: map[string]interface{}{}}
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Empty(t, repo.values)
	hit, err := svc.Get(ctx, "k", new(string))
	assert.NoError(t, err)
	assert.False(t, hit)

	var nilSvc *CacheService
	assert.False(t, nilSvc.Enabled())
	assert.NoError(t, nilSvc.InvalidateTerm(ctx, "T1"))
}

func TestMetricsServiceCounters(t *testing.T) {
	metrics := NewMetricsService()

	metrics.ObservePlannerRun(false, 2, 5*time.Millisecond)
	metrics.ObservePlannerRun(true, 0, time.Millisecond)
	metrics.RecordCatalogImport("csv", true)
	metrics.RecordCatalogImport("xlsx", false)
	metrics.RecordExportJob(models.ExportFormatPDF, models.ExportStatusFinished)
	metrics.ObserveHTTPRequest("GET", "/api/v1/plans", 200, 10*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.plannerRuns.WithLabelValues(plannerModeGrouped)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.plannerRuns.WithLabelValues(plannerModeGeneralOnly)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.catalogImports.WithLabelValues("xlsx", "failure")))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.exportJobs.WithLabelValues("pdf", "FINISHED")))

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(2), snapshot.PlannerRuns)
	assert.Equal(t, uint64(1), snapshot.GeneralOnlyRuns)
	assert.Equal(t, uint64(1), snapshot.RequestsTotal)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "planner_runs_total")

	var nilMetrics *MetricsService
	nilMetrics.ObservePlannerRun(true, 0, 0)
	assert.Equal(t, uint64(0), nilMetrics.Snapshot().PlannerRuns)
}
