package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"modeldash/internal/core"
)

func TestFileStorage_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	st := NewFileStorage(path)

	now := time.Now().UTC().Truncate(time.Second)
	in := &core.RequestStats{
		TotalRequests:      2,
		SuccessfulRequests: 1,
		FailedRequests:     1,
		TotalResponseTime:  30,
		LastRequestTime:    now,
		RequestHistory: []core.RequestRecord{
			{Timestamp: now, Success: true, ResponseTime: 10, Resource: core.ResourceModels},
			{Timestamp: now, Success: false, ResponseTime: 20, Resource: core.ResourceModelDetail, Target: "bad-id"},
		},
	}
	if err := st.SaveStats(in); err != nil {
		t.Fatalf("保存失败: %v", err)
	}

	out, err := st.LoadStats()
	if err != nil {
		t.Fatalf("加载失败: %v", err)
	}
	if out.TotalRequests != 2 || out.FailedRequests != 1 {
		t.Errorf("统计不一致: %+v", out)
	}
	if len(out.RequestHistory) != 2 || out.RequestHistory[1].Target != "bad-id" {
		t.Errorf("历史不一致: %+v", out.RequestHistory)
	}
	if !out.LastRequestTime.Equal(now) {
		t.Errorf("时间不一致: %v != %v", out.LastRequestTime, now)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("不应残留临时文件，实际 %d 个文件", len(entries))
	}
}

func TestFileStorage_LoadMissingOrEmpty(t *testing.T) {
	dir := t.TempDir()

	stats, err := NewFileStorage(filepath.Join(dir, "missing.json")).LoadStats()
	if err != nil {
		t.Fatalf("文件不存在不应报错: %v", err)
	}
	if stats.RequestHistory == nil || len(stats.RequestHistory) != 0 {
		t.Error("应返回空历史")
	}

	empty := filepath.Join(dir, "empty.json")
	if err := os.WriteFile(empty, nil, core.FilePermissionReadWrite); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStorage(empty).LoadStats(); err != nil {
		t.Fatalf("空文件不应报错: %v", err)
	}
}

func TestFileStorage_LoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	if err := os.WriteFile(path, []byte("{not json"), core.FilePermissionReadWrite); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileStorage(path).LoadStats(); err == nil {
		t.Error("损坏文件应返回错误")
	}
}

func TestInitStorage_FallsBackToFile(t *testing.T) {
	t.Setenv("REDIS_URL", "not-a-redis-url")
	t.Setenv("STATS_FILE", filepath.Join(t.TempDir(), "stats.json"))

	st, err := InitStorage(&core.NopLogger{})
	if err != nil {
		t.Fatalf("初始化失败: %v", err)
	}
	defer func() { _ = st.Close() }()

	if _, ok := st.(*FileStorage); !ok {
		t.Fatalf("Redis 不可用时应回退到文件存储，实际 %T", st)
	}
}

func TestNewRedisStorage_InvalidURL(t *testing.T) {
	if _, err := NewRedisStorage(t.Context(), RedisStorageConfig{URL: "http://nope"}); err == nil {
		t.Error("非法 Redis URL 应返回错误")
	}
}
