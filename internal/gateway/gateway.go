// Package gateway mediates every call to the upstream model API and derives
// the views the dashboard renders from its responses.
//
// Each network operation performs exactly one GET. Failures never escape as
// faults: Fetch* operations return a typed *UpstreamError, and the List*/Get*
// operations fold that into an empty collection or an {"error": ...} payload.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"modeldash/internal/core"
	"modeldash/internal/util"

	"github.com/bytedance/sonic"
)

// Config holds the gateway's collaborators. It is copied at construction.
type Config struct {
	BaseURL       string
	APIKey        string
	FineTunesPath string
	HTTPClient    *http.Client
	Logger        core.Logger
	Metrics       core.MetricsCollector
}

// Gateway is safe for concurrent use; none of its fields change after New.
type Gateway struct {
	baseURL       string
	authorization string
	fineTunesPath string
	httpClient    *http.Client
	logger        core.Logger
	metrics       core.MetricsCollector
}

// New validates cfg and builds a Gateway.
func New(cfg Config) (*Gateway, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("gateway: api key is required")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("gateway: base url is required")
	}

	g := &Gateway{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		authorization: core.AuthBearerPrefix + cfg.APIKey,
		fineTunesPath: strings.Trim(cfg.FineTunesPath, "/"),
		httpClient:    cfg.HTTPClient,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}
	if g.fineTunesPath == "" {
		g.fineTunesPath = core.DefaultFineTunesPath
	}
	if g.httpClient == nil {
		g.httpClient = &http.Client{Timeout: core.HTTPRequestTimeout}
	}
	if g.logger == nil {
		g.logger = &core.NopLogger{}
	}
	if g.metrics == nil {
		g.metrics = &core.NopMetrics{}
	}
	return g, nil
}

func (g *Gateway) modelsURL() string {
	return util.JoinURL(g.baseURL, core.ModelsPath)
}

func (g *Gateway) modelURL(id string) string {
	return util.JoinURLPath(g.baseURL, core.ModelsPath, id)
}

func (g *Gateway) fineTunesURL() string {
	return util.JoinURL(g.baseURL, g.fineTunesPath)
}

func (g *Gateway) fineTuneURL(id string) string {
	return util.JoinURLPath(g.baseURL, g.fineTunesPath, id)
}

// get performs one authenticated GET and returns the body of a 2xx response.
func (g *Gateway) get(ctx context.Context, resource, target, url string) (body []byte, err error) {
	start := time.Now()
	status := 0
	defer func() {
		elapsed := time.Since(start)
		g.metrics.RecordUpstreamCall(resource, target, err == nil, elapsed)
		g.logger.Debug("[%s] GET %s -> %d (%s)", core.RequestIDFromContext(ctx), url, status, elapsed.Round(time.Millisecond))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &UpstreamError{Kind: KindUnavailable, Resource: resource, URL: url, Err: err}
	}
	req.Header.Set(core.HeaderAuthorization, g.authorization)
	req.Header.Set(core.HeaderAccept, core.ContentTypeJSON)

	resp, err := g.httpClient.Do(req) //nolint:gosec // URL is built from the configured base URL.
	if err != nil {
		return nil, &UpstreamError{Kind: KindUnavailable, Resource: resource, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	status = resp.StatusCode

	body, err = io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	if err != nil {
		return nil, &UpstreamError{Kind: KindUnavailable, Resource: resource, URL: url, StatusCode: status, Err: fmt.Errorf("read body: %w", err)}
	}

	if status < 200 || status > 299 {
		return nil, &UpstreamError{Kind: KindRejected, Resource: resource, URL: url, StatusCode: status, Body: string(body)}
	}
	return body, nil
}

func malformed(resource, url string, status int, err error) *UpstreamError {
	return &UpstreamError{Kind: KindMalformed, Resource: resource, URL: url, StatusCode: status, Err: fmt.Errorf("decode body: %w", err)}
}

// FetchModels returns the model collection or an *UpstreamError.
// A body without a data field yields an empty collection.
func (g *Gateway) FetchModels(ctx context.Context) ([]core.ModelRecord, error) {
	url := g.modelsURL()
	body, err := g.get(ctx, core.ResourceModels, "", url)
	if err != nil {
		return []core.ModelRecord{}, err
	}

	var collection core.ModelCollection
	if err := sonic.Unmarshal(body, &collection); err != nil {
		return []core.ModelRecord{}, malformed(core.ResourceModels, url, http.StatusOK, err)
	}
	if collection.Data == nil {
		return []core.ModelRecord{}, nil
	}
	return collection.Data, nil
}

// FetchFineTunes returns the fine-tune collection or an *UpstreamError.
func (g *Gateway) FetchFineTunes(ctx context.Context) ([]core.FineTuneRecord, error) {
	url := g.fineTunesURL()
	body, err := g.get(ctx, core.ResourceFineTunes, "", url)
	if err != nil {
		return []core.FineTuneRecord{}, err
	}

	var collection core.FineTuneCollection
	if err := sonic.Unmarshal(body, &collection); err != nil {
		return []core.FineTuneRecord{}, malformed(core.ResourceFineTunes, url, http.StatusOK, err)
	}
	if collection.Data == nil {
		return []core.FineTuneRecord{}, nil
	}
	return collection.Data, nil
}

func (g *Gateway) fetchDetail(ctx context.Context, resource, id, url string) (core.DetailPayload, error) {
	body, err := g.get(ctx, resource, id, url)
	if err != nil {
		return nil, err
	}

	var payload core.DetailPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return nil, malformed(resource, url, http.StatusOK, err)
	}
	if payload == nil {
		payload = core.DetailPayload{}
	}
	return payload, nil
}

// FetchModelDetail returns the upstream body for one model.
func (g *Gateway) FetchModelDetail(ctx context.Context, id string) (core.DetailPayload, error) {
	return g.fetchDetail(ctx, core.ResourceModelDetail, id, g.modelURL(id))
}

// FetchFineTuneDetail returns the upstream body for one fine-tune job.
func (g *Gateway) FetchFineTuneDetail(ctx context.Context, id string) (core.DetailPayload, error) {
	return g.fetchDetail(ctx, core.ResourceFineTuneDetail, id, g.fineTuneURL(id))
}

// ListModels is FetchModels with failures reported as an empty collection.
func (g *Gateway) ListModels(ctx context.Context) []core.ModelRecord {
	models, err := g.FetchModels(ctx)
	if err != nil {
		g.logger.Warn("[%s] List models failed: %v", core.RequestIDFromContext(ctx), err)
	}
	return models
}

// ListFineTunes is FetchFineTunes with failures reported as an empty collection.
func (g *Gateway) ListFineTunes(ctx context.Context) []core.FineTuneRecord {
	fineTunes, err := g.FetchFineTunes(ctx)
	if err != nil {
		g.logger.Warn("[%s] List fine-tunes failed: %v", core.RequestIDFromContext(ctx), err)
	}
	return fineTunes
}

// detailOrError folds a Fetch*Detail result into the payload served to clients.
func (g *Gateway) detailOrError(ctx context.Context, payload core.DetailPayload, err error) core.DetailPayload {
	if err == nil {
		return payload
	}
	g.logger.Warn("[%s] Detail lookup failed: %v", core.RequestIDFromContext(ctx), err)
	return core.NewErrorPayload(errorPayloadMessage(err))
}

// GetModelDetail returns the model body, or {"error": <upstream body>} on failure.
func (g *Gateway) GetModelDetail(ctx context.Context, id string) core.DetailPayload {
	payload, err := g.FetchModelDetail(ctx, id)
	return g.detailOrError(ctx, payload, err)
}

// GetFineTuneDetail returns the fine-tune body, or {"error": <upstream body>} on failure.
func (g *Gateway) GetFineTuneDetail(ctx context.Context, id string) core.DetailPayload {
	payload, err := g.FetchFineTuneDetail(ctx, id)
	return g.detailOrError(ctx, payload, err)
}

// FetchDetail routes to the fine-tune job when fineTuneID is set, ignoring
// id; otherwise it fetches the model id.
func (g *Gateway) FetchDetail(ctx context.Context, id, fineTuneID string) (core.DetailPayload, error) {
	if fineTuneID != "" {
		return g.FetchFineTuneDetail(ctx, fineTuneID)
	}
	return g.FetchModelDetail(ctx, id)
}

// ResolveDetail is FetchDetail with failures folded into an error payload.
func (g *Gateway) ResolveDetail(ctx context.Context, id, fineTuneID string) core.DetailPayload {
	payload, _ := g.LookupDetail(ctx, id, fineTuneID)
	return payload
}

// LookupDetail is ResolveDetail that also reports whether the payload is an
// error payload, so callers never have to infer it from the payload's shape.
func (g *Gateway) LookupDetail(ctx context.Context, id, fineTuneID string) (core.DetailPayload, bool) {
	payload, err := g.FetchDetail(ctx, id, fineTuneID)
	return g.detailOrError(ctx, payload, err), err != nil
}
