package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"modeldash/internal/core"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type countingStorage struct {
	mu        sync.Mutex
	saveCount int
	loaded    *core.RequestStats
	saveErr   error
}

func (s *countingStorage) SaveStats(_ *core.RequestStats) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveCount++
	return s.saveErr
}

func (s *countingStorage) LoadStats() (*core.RequestStats, error) {
	if s.loaded != nil {
		return s.loaded, nil
	}
	return &core.RequestStats{}, nil
}

func (s *countingStorage) Close() error { return nil }

func (s *countingStorage) getSaveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveCount
}

func newTestMetrics(historySize int, st core.StorageInterface) *MetricsService {
	return NewMetricsService(MetricsConfig{
		SaveInterval: time.Hour,
		HistorySize:  historySize,
		Storage:      st,
		Logger:       &core.NopLogger{},
	})
}

func TestMetricsService_RecordUpstreamCall(t *testing.T) {
	ms := newTestMetrics(10, nil)
	defer func() { _ = ms.Close() }()

	ms.RecordUpstreamCall(core.ResourceModels, "", true, 100*time.Millisecond)
	ms.RecordUpstreamCall(core.ResourceModelDetail, "bad-id", false, 200*time.Millisecond)
	ms.RecordUpstreamCall(core.ResourceFineTunes, "", true, 150*time.Millisecond)

	stats := ms.GetRequestStats()
	if stats.TotalRequests != 3 {
		t.Errorf("Expected 3 total requests, got %d", stats.TotalRequests)
	}
	if stats.SuccessfulRequests != 2 {
		t.Errorf("Expected 2 successful requests, got %d", stats.SuccessfulRequests)
	}
	if stats.FailedRequests != 1 {
		t.Errorf("Expected 1 failed request, got %d", stats.FailedRequests)
	}
	if stats.TotalResponseTime != 450 {
		t.Errorf("Expected 450ms total, got %d", stats.TotalResponseTime)
	}
	if len(stats.RequestHistory) != 3 || stats.RequestHistory[1].Target != "bad-id" {
		t.Errorf("历史记录不正确: %+v", stats.RequestHistory)
	}
}

func TestMetricsService_GetQPS(t *testing.T) {
	ms := newTestMetrics(10, nil)
	defer func() { _ = ms.Close() }()

	if qps := ms.GetQPS(); qps != 0 {
		t.Errorf("无请求时 QPS 应为 0，实际 %f", qps)
	}

	for range 6 {
		ms.RecordUpstreamCall(core.ResourceModels, "", true, time.Millisecond)
	}
	if qps := ms.GetQPS(); qps != 0.1 {
		t.Errorf("6 次/分钟应为 0.1 QPS，实际 %f", qps)
	}
}

func TestMetricsService_MaxHistorySize(t *testing.T) {
	ms := newTestMetrics(3, nil)
	defer func() { _ = ms.Close() }()

	for i := range 5 {
		ms.RecordUpstreamCall(core.ResourceModelDetail, string(rune('a'+i)), true, time.Millisecond)
	}

	stats := ms.GetRequestStats()
	if len(stats.RequestHistory) != 3 {
		t.Fatalf("History should be capped at 3, got %d", len(stats.RequestHistory))
	}
	if stats.RequestHistory[0].Target != "c" {
		t.Errorf("应保留最新记录，首条为 %q", stats.RequestHistory[0].Target)
	}
}

func TestMetricsService_DefaultHistorySize(t *testing.T) {
	ms := newTestMetrics(0, nil)
	if ms.maxHistorySize != core.HistoryBufferSize {
		t.Errorf("默认历史容量应为 %d，实际 %d", core.HistoryBufferSize, ms.maxHistorySize)
	}
}

func TestMetricsService_SaveDebounced(t *testing.T) {
	st := &countingStorage{}
	ms := newTestMetrics(10, st)

	ms.RecordUpstreamCall(core.ResourceModels, "", true, time.Millisecond)
	ms.RecordUpstreamCall(core.ResourceModels, "", true, time.Millisecond)
	ms.RecordUpstreamCall(core.ResourceModels, "", true, time.Millisecond)

	if got := st.getSaveCount(); got != 1 {
		t.Errorf("保存间隔内应只持久化一次，实际 %d", got)
	}
}

func TestMetricsService_LoadStats(t *testing.T) {
	now := time.Now()
	st := &countingStorage{loaded: &core.RequestStats{
		TotalRequests:      4,
		SuccessfulRequests: 3,
		FailedRequests:     1,
		LastRequestTime:    now,
		RequestHistory: []core.RequestRecord{
			{Timestamp: now, Resource: "a"},
			{Timestamp: now, Resource: "b"},
			{Timestamp: now, Resource: "c"},
		},
	}}
	ms := newTestMetrics(2, st)

	if err := ms.LoadStats(); err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	stats := ms.GetRequestStats()
	if stats.TotalRequests != 4 || stats.FailedRequests != 1 {
		t.Errorf("计数未恢复: %+v", stats)
	}
	if len(stats.RequestHistory) != 2 || stats.RequestHistory[0].Resource != "b" {
		t.Errorf("历史应截断到容量上限: %+v", stats.RequestHistory)
	}
}

func TestMetricsService_Close_Idempotent(t *testing.T) {
	st := &countingStorage{}
	ms := newTestMetrics(10, st)

	ms.RecordUpstreamCall(core.ResourceModels, "", true, time.Millisecond)

	if err := ms.Close(); err != nil {
		t.Fatalf("第一次关闭不应失败: %v", err)
	}
	firstCloseSaves := st.getSaveCount()
	if firstCloseSaves < 2 {
		t.Fatalf("关闭时应再持久化一次，实际 %d", firstCloseSaves)
	}

	if err := ms.Close(); err != nil {
		t.Fatalf("第二次关闭不应失败: %v", err)
	}
	if st.getSaveCount() != firstCloseSaves {
		t.Fatalf("第二次 Close 不应新增持久化，第一次=%d，第二次后=%d", firstCloseSaves, st.getSaveCount())
	}
}

func TestMetricsService_CloseReturnsSaveError(t *testing.T) {
	saveErr := errors.New("disk full")
	ms := newTestMetrics(10, &countingStorage{saveErr: saveErr})
	if err := ms.Close(); !errors.Is(err, saveErr) {
		t.Errorf("Close 应返回保存错误，实际 %v", err)
	}
}

func TestGetPeriodStats(t *testing.T) {
	now := time.Now()
	history := []core.RequestRecord{
		{Timestamp: now.Add(-1 * time.Hour), Success: true, ResponseTime: 100},
		{Timestamp: now.Add(-2 * time.Hour), Success: false, ResponseTime: 300},
		{Timestamp: now.Add(-48 * time.Hour), Success: true, ResponseTime: 50},
	}

	stats := GetPeriodStats(history, 24, 24*7)
	day := stats[24]
	if day.Requests != 2 {
		t.Errorf("24h 内应有 2 次请求，实际 %d", day.Requests)
	}
	if day.SuccessRate != 50 {
		t.Errorf("24h 成功率应为 50，实际 %f", day.SuccessRate)
	}
	if day.AvgResponseTime != 200 {
		t.Errorf("24h 平均耗时应为 200，实际 %d", day.AvgResponseTime)
	}
	if stats[24*7].Requests != 3 {
		t.Errorf("7d 内应有 3 次请求，实际 %d", stats[24*7].Requests)
	}

	if GetPeriodStats(history) != nil {
		t.Error("未指定窗口应返回 nil")
	}
}

func TestObserveUpstreamCall_Prometheus(t *testing.T) {
	before := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("prom_test", "failure"))
	ms := newTestMetrics(10, nil)
	ms.RecordUpstreamCall("prom_test", "x", false, time.Millisecond)

	after := testutil.ToFloat64(upstreamRequestsTotal.WithLabelValues("prom_test", "failure"))
	if after-before != 1 {
		t.Errorf("Prometheus 计数应增加 1，实际增加 %v", after-before)
	}
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(GinMiddleware())
	r.GET("/api/model/:model_id", func(c *gin.Context) { c.Status(http.StatusOK) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/model/:model_id", http.MethodGet, "200"))
	unmatchedBefore := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404"))

	for _, path := range []string{"/api/model/gpt-4", "/api/model/ft:x:y", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("/api/model/:model_id", http.MethodGet, "200")) - before; got != 2 {
		t.Errorf("路由模板标签应计数 2 次，实际 %v", got)
	}
	if got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "404")) - unmatchedBefore; got != 1 {
		t.Errorf("未匹配路由应计数 1 次，实际 %v", got)
	}
}
