package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"modeldash/internal/core"
)

// AtomicRequestStats thread-safe upstream call counters
type AtomicRequestStats struct {
	TotalRequests      atomic.Int64
	SuccessfulRequests atomic.Int64
	FailedRequests     atomic.Int64
	TotalResponseTime  atomic.Int64
}

// MetricsConfig configuration for MetricsService
type MetricsConfig struct {
	SaveInterval time.Duration
	HistorySize  int
	Storage      core.StorageInterface
	Logger       core.Logger
}

// MetricsService records every upstream call made by the gateway, keeps a
// bounded history for period statistics and persists it through Storage.
type MetricsService struct {
	atomicStats AtomicRequestStats

	historyMu       sync.RWMutex
	requestHistory  []core.RequestRecord
	lastRequestTime time.Time
	maxHistorySize  int

	saveMu          sync.Mutex
	lastSaveTime    time.Time
	minSaveInterval time.Duration
	storage         core.StorageInterface
	logger          core.Logger

	recentMu       sync.Mutex
	recentRequests []time.Time

	closeOnce sync.Once
	closeErr  error
}

// NewMetricsService creates a new MetricsService
func NewMetricsService(config MetricsConfig) *MetricsService {
	historySize := config.HistorySize
	if historySize <= 0 {
		historySize = core.HistoryBufferSize
	}
	logger := config.Logger
	if logger == nil {
		logger = &core.NopLogger{}
	}
	return &MetricsService{
		maxHistorySize:  historySize,
		minSaveInterval: config.SaveInterval,
		storage:         config.Storage,
		logger:          logger,
	}
}

// RecordUpstreamCall records the outcome of one upstream call.
func (ms *MetricsService) RecordUpstreamCall(resource, target string, success bool, duration time.Duration) {
	observeUpstreamCall(resource, success, duration)

	now := time.Now()
	responseTime := duration.Milliseconds()

	ms.atomicStats.TotalRequests.Add(1)
	ms.atomicStats.TotalResponseTime.Add(responseTime)
	if success {
		ms.atomicStats.SuccessfulRequests.Add(1)
	} else {
		ms.atomicStats.FailedRequests.Add(1)
	}

	ms.recentMu.Lock()
	ms.recentRequests = append(pruneBefore(ms.recentRequests, now.Add(-core.QPSWindow)), now)
	ms.recentMu.Unlock()

	ms.historyMu.Lock()
	ms.lastRequestTime = now
	ms.requestHistory = append(ms.requestHistory, core.RequestRecord{
		Timestamp:    now,
		Success:      success,
		ResponseTime: responseTime,
		Resource:     resource,
		Target:       target,
	})
	if overflow := len(ms.requestHistory) - ms.maxHistorySize; overflow > 0 {
		ms.requestHistory = append([]core.RequestRecord(nil), ms.requestHistory[overflow:]...)
	}
	ms.historyMu.Unlock()

	ms.SaveStatsDebounced()
}

// pruneBefore drops leading timestamps older than cutoff. times must be sorted.
func pruneBefore(times []time.Time, cutoff time.Time) []time.Time {
	start := 0
	for start < len(times) && times[start].Before(cutoff) {
		start++
	}
	if start == 0 {
		return times
	}
	return append([]time.Time(nil), times[start:]...)
}

// GetQPS returns the call rate over the last minute
func (ms *MetricsService) GetQPS() float64 {
	ms.recentMu.Lock()
	defer ms.recentMu.Unlock()

	ms.recentRequests = pruneBefore(ms.recentRequests, time.Now().Add(-core.QPSWindow))
	if len(ms.recentRequests) == 0 {
		return 0
	}
	return math.Round(float64(len(ms.recentRequests))/core.QPSWindow.Seconds()*1000) / 1000
}

// GetRequestStats returns current stats snapshot
func (ms *MetricsService) GetRequestStats() core.RequestStats {
	ms.historyMu.RLock()
	defer ms.historyMu.RUnlock()

	historyCopy := make([]core.RequestRecord, len(ms.requestHistory))
	copy(historyCopy, ms.requestHistory)

	return core.RequestStats{
		TotalRequests:      ms.atomicStats.TotalRequests.Load(),
		SuccessfulRequests: ms.atomicStats.SuccessfulRequests.Load(),
		FailedRequests:     ms.atomicStats.FailedRequests.Load(),
		TotalResponseTime:  ms.atomicStats.TotalResponseTime.Load(),
		LastRequestTime:    ms.lastRequestTime,
		RequestHistory:     historyCopy,
	}
}

// GetPeriodStats computes period statistics for multiple hour windows in a single pass.
func GetPeriodStats(history []core.RequestRecord, hourPeriods ...int) map[int]core.PeriodStats {
	if len(hourPeriods) == 0 {
		return nil
	}

	now := time.Now()
	cutoffs := make([]time.Time, len(hourPeriods))
	requests := make([]int64, len(hourPeriods))
	successful := make([]int64, len(hourPeriods))
	responseTime := make([]int64, len(hourPeriods))

	for i, hours := range hourPeriods {
		cutoffs[i] = now.Add(-time.Duration(hours) * time.Hour)
	}

	for _, record := range history {
		for i, cutoff := range cutoffs {
			if record.Timestamp.After(cutoff) {
				requests[i]++
				responseTime[i] += record.ResponseTime
				if record.Success {
					successful[i]++
				}
			}
		}
	}

	result := make(map[int]core.PeriodStats, len(hourPeriods))
	for i, hours := range hourPeriods {
		stats := core.PeriodStats{
			Requests: requests[i],
			QPS:      float64(requests[i]) / (float64(hours) * 3600.0),
		}
		if requests[i] > 0 {
			stats.SuccessRate = float64(successful[i]) / float64(requests[i]) * 100
			stats.AvgResponseTime = responseTime[i] / requests[i]
		}
		result[hours] = stats
	}
	return result
}

// LoadStats restores counters and history from storage
func (ms *MetricsService) LoadStats() error {
	if ms.storage == nil {
		return nil
	}
	stats, err := ms.storage.LoadStats()
	if err != nil {
		return err
	}

	ms.atomicStats.TotalRequests.Store(stats.TotalRequests)
	ms.atomicStats.SuccessfulRequests.Store(stats.SuccessfulRequests)
	ms.atomicStats.FailedRequests.Store(stats.FailedRequests)
	ms.atomicStats.TotalResponseTime.Store(stats.TotalResponseTime)

	history := stats.RequestHistory
	if len(history) > ms.maxHistorySize {
		history = history[len(history)-ms.maxHistorySize:]
	}

	ms.historyMu.Lock()
	ms.lastRequestTime = stats.LastRequestTime
	ms.requestHistory = history
	ms.historyMu.Unlock()

	return nil
}

// SaveStatsDebounced persists stats at most once per save interval
func (ms *MetricsService) SaveStatsDebounced() {
	if ms.storage == nil {
		return
	}

	ms.saveMu.Lock()
	now := time.Now()
	if !ms.lastSaveTime.IsZero() && now.Sub(ms.lastSaveTime) < ms.minSaveInterval {
		ms.saveMu.Unlock()
		return
	}
	ms.lastSaveTime = now
	ms.saveMu.Unlock()

	stats := ms.GetRequestStats()
	if err := ms.storage.SaveStats(&stats); err != nil {
		ms.logger.Warn("Failed to save stats: %v", err)
	}
}

// Close saves final stats. Only the first call persists.
func (ms *MetricsService) Close() error {
	ms.closeOnce.Do(func() {
		if ms.storage == nil {
			return
		}
		stats := ms.GetRequestStats()
		ms.closeErr = ms.storage.SaveStats(&stats)
	})
	return ms.closeErr
}
