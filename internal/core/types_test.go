package core

import (
	"testing"

	"github.com/bytedance/sonic"
)

func TestModelRecord_IsFineTuned(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"gpt-4", false},
		{"ft:gpt-3.5-turbo:acme:foo:123", true},
		{"davinci:ft-acme-2023", false},
		{"", false},
		{"FT:upper", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := (ModelRecord{"id": tt.id}).IsFineTuned(); got != tt.want {
				t.Errorf("IsFineTuned(%q) = %v, 期望 %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestModelRecord_IDWithoutString(t *testing.T) {
	if id := (ModelRecord{"id": 42}).ID(); id != "" {
		t.Errorf("非字符串 id 应返回空串，实际 %q", id)
	}
	if id := (ModelRecord(nil)).ID(); id != "" {
		t.Errorf("nil 记录应返回空串，实际 %q", id)
	}
}

func TestFineTuneRecord_ProducedModel(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantModel string
		wantOK    bool
	}{
		{"字段存在", `{"id":"ft-1","fine_tuned_model":"ft:m:a:1"}`, "ft:m:a:1", true},
		{"字段缺失", `{"id":"ft-2"}`, "", false},
		{"字段为null", `{"id":"ft-3","fine_tuned_model":null}`, "", false},
		{"字段为空字符串", `{"id":"ft-4","fine_tuned_model":""}`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec FineTuneRecord
			if err := sonic.Unmarshal([]byte(tt.input), &rec); err != nil {
				t.Fatalf("解析失败: %v", err)
			}
			model, ok := rec.ProducedModel()
			if ok != tt.wantOK || model != tt.wantModel {
				t.Errorf("ProducedModel() = (%q, %v), 期望 (%q, %v)", model, ok, tt.wantModel, tt.wantOK)
			}
		})
	}
}

func TestFineTuneRecord_RoundTripKeepsNull(t *testing.T) {
	const input = `{"fine_tuned_model":null,"id":"ft-1"}`
	var rec FineTuneRecord
	if err := sonic.Unmarshal([]byte(input), &rec); err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	data, err := sonic.ConfigStd.Marshal(rec)
	if err != nil {
		t.Fatalf("序列化失败: %v", err)
	}
	if string(data) != input {
		t.Errorf("序列化结果 = %s, 期望 %s", data, input)
	}
}

func TestNewErrorPayload(t *testing.T) {
	payload := NewErrorPayload("not found")
	if len(payload) != 1 || payload[ErrorPayloadKey] != "not found" {
		t.Errorf("NewErrorPayload() = %v", payload)
	}
}
