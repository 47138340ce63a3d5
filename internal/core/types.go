package core

import (
	"strings"
	"time"
)

// ModelRecord is a single entry of the upstream model collection, kept
// verbatim so every upstream field is served back unchanged.
type ModelRecord map[string]any

// ID returns the model id, or "" when the entry has no string id.
func (m ModelRecord) ID() string {
	id, _ := m[FieldID].(string)
	return id
}

// IsFineTuned reports whether the model id denotes a fine-tuned model.
func (m ModelRecord) IsFineTuned() bool {
	return strings.HasPrefix(m.ID(), FineTunedModelPrefix)
}

// FineTuneRecord is a single entry of the upstream fine-tune collection,
// kept verbatim like ModelRecord.
type FineTuneRecord map[string]any

// ID returns the fine-tune job id.
func (f FineTuneRecord) ID() string {
	id, _ := f[FieldID].(string)
	return id
}

// ProducedModel returns the fine-tuned model id and whether one is present.
// A missing, null or empty fine_tuned_model counts as absent.
func (f FineTuneRecord) ProducedModel() (string, bool) {
	model, _ := f[FieldFineTunedModel].(string)
	return model, model != ""
}

// FineTuneMap maps a fine-tuned model id to the id of the job that produced it.
type FineTuneMap map[string]string

// DetailPayload is an upstream detail body passed through verbatim,
// or an error payload of the form {"error": "..."}.
type DetailPayload map[string]any

// NewErrorPayload builds the error shape served in place of a detail body.
func NewErrorPayload(message string) DetailPayload {
	return DetailPayload{ErrorPayloadKey: message}
}

// ModelClassification splits model ids into base and fine-tuned models.
type ModelClassification struct {
	Base      []string `json:"base"`
	FineTuned []string `json:"fine_tuned"`
}

// IndexView is the data rendered by the dashboard index page.
type IndexView struct {
	BaseModels      []string    `json:"base_models"`
	FineTunedModels []string    `json:"fine_tuned_models"`
	FineTuneMap     FineTuneMap `json:"fine_tune_map"`
}

// ModelCollection is the upstream envelope for list endpoints.
type ModelCollection struct {
	Object string        `json:"object"`
	Data   []ModelRecord `json:"data"`
}

// FineTuneCollection is the upstream envelope for the fine-tune list endpoint.
type FineTuneCollection struct {
	Object string           `json:"object"`
	Data   []FineTuneRecord `json:"data"`
}

// RequestStats holds aggregated upstream call statistics.
type RequestStats struct {
	TotalRequests      int64           `json:"total_requests"`
	SuccessfulRequests int64           `json:"successful_requests"`
	FailedRequests     int64           `json:"failed_requests"`
	TotalResponseTime  int64           `json:"total_response_time"`
	LastRequestTime    time.Time       `json:"last_request_time"`
	RequestHistory     []RequestRecord `json:"request_history"`
}

// RequestRecord is one upstream call kept in history.
type RequestRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	Success      bool      `json:"success"`
	ResponseTime int64     `json:"response_time"`
	Resource     string    `json:"resource"`
	Target       string    `json:"target,omitempty"`
}

// PeriodStats holds computed statistics for a time period.
type PeriodStats struct {
	Requests        int64   `json:"requests"`
	SuccessRate     float64 `json:"successRate"`
	AvgResponseTime int64   `json:"avgResponseTime"`
	QPS             float64 `json:"qps"`
}
