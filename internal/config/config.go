package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"modeldash/internal/core"
	"modeldash/internal/util"
)

// ErrMissingAPIKey is returned when the upstream credential is not configured.
var ErrMissingAPIKey = errors.New(core.EnvAPIKey + " environment variable is required")

// ServerConfig server configuration
type ServerConfig struct {
	Port               string
	GinMode            string
	CORSAllowOrigin    string
	Upstream           UpstreamSettings
	HTTPClientSettings HTTPClientSettings
	Storage            core.StorageInterface
	Logger             core.Logger
}

// UpstreamSettings describes the upstream API. Read once at startup.
type UpstreamSettings struct {
	BaseURL       string
	APIKey        string
	FineTunesPath string
}

// HTTPClientSettings HTTP client configuration
type HTTPClientSettings struct {
	MaxIdleConns        int
	MaxIdleConnsPerHost int
	MaxConnsPerHost     int
	IdleConnTimeout     time.Duration
	TLSHandshakeTimeout time.Duration
	RequestTimeout      time.Duration
}

// DefaultHTTPClientSettings default HTTP client settings
func DefaultHTTPClientSettings() HTTPClientSettings {
	return HTTPClientSettings{
		MaxIdleConns:        core.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: core.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     core.HTTPMaxConnsPerHost,
		IdleConnTimeout:     core.HTTPIdleConnTimeout,
		TLSHandshakeTimeout: core.HTTPTLSHandshakeTimeout,
		RequestTimeout:      core.HTTPRequestTimeout,
	}
}

// LoadUpstreamSettingsFromEnv reads the upstream credential and endpoints.
func LoadUpstreamSettingsFromEnv() (UpstreamSettings, error) {
	settings := UpstreamSettings{
		BaseURL:       util.GetEnvWithDefault(core.EnvBaseURL, core.DefaultUpstreamBaseURL),
		APIKey:        strings.TrimSpace(os.Getenv(core.EnvAPIKey)),
		FineTunesPath: strings.Trim(util.GetEnvWithDefault(core.EnvFineTunesPath, core.DefaultFineTunesPath), "/"),
	}

	if settings.APIKey == "" {
		return settings, ErrMissingAPIKey
	}

	parsed, err := url.Parse(settings.BaseURL)
	if err != nil {
		return settings, fmt.Errorf("invalid %s: %w", core.EnvBaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" || parsed.Host == "" {
		return settings, fmt.Errorf("invalid %s %q: must be an absolute http(s) URL", core.EnvBaseURL, settings.BaseURL)
	}

	if settings.FineTunesPath == "" {
		settings.FineTunesPath = core.DefaultFineTunesPath
	}

	return settings, nil
}

// LoadServerConfigFromEnv loads server config from environment variables
func LoadServerConfigFromEnv(logger core.Logger) (ServerConfig, error) {
	upstream, err := LoadUpstreamSettingsFromEnv()
	if err != nil {
		return ServerConfig{}, err
	}
	logger.Info("Upstream API %s (key %s, fine-tunes at /%s)", upstream.BaseURL, util.MaskSecret(upstream.APIKey), upstream.FineTunesPath)

	httpSettings := DefaultHTTPClientSettings()
	timeout, err := util.GetEnvDuration(core.EnvHTTPTimeout, core.HTTPRequestTimeout)
	if err != nil {
		return ServerConfig{}, err
	}
	httpSettings.RequestTimeout = timeout

	config := ServerConfig{
		Port:               util.GetEnvWithDefault(core.EnvPort, core.DefaultPort),
		GinMode:            util.GetEnvWithDefault(core.EnvGinMode, core.DefaultGinMode),
		CORSAllowOrigin:    util.GetEnvWithDefault(core.EnvCORSAllowOrigin, "*"),
		Upstream:           upstream,
		HTTPClientSettings: httpSettings,
	}

	return config, nil
}
