package util

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

// MarshalIndentJSON renders v as indented JSON
func MarshalIndentJSON(v any) (string, error) {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// GetEnvWithDefault gets env var with default value
func GetEnvWithDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvDuration parses a duration env var, returning defaultValue when unset.
func GetEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return defaultValue, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}

// JoinURL appends escaped path segments to base.
func JoinURL(base string, segments ...string) string {
	out := strings.TrimRight(base, "/")
	for _, seg := range segments {
		for _, part := range strings.Split(strings.Trim(seg, "/"), "/") {
			if part == "" {
				continue
			}
			out += "/" + url.PathEscape(part)
		}
	}
	return out
}

// JoinURLPath appends a configured path followed by a single escaped identifier.
// Unlike JoinURL, slashes inside id are escaped rather than split.
func JoinURLPath(base, path, id string) string {
	return JoinURL(base, path) + "/" + url.PathEscape(id)
}

// TruncateString truncates string and adds replacement text in the middle
func TruncateString(s string, prefixLen, suffixLen int, replacement string) string {
	if len(s) > prefixLen+suffixLen {
		return s[:prefixLen] + replacement + s[len(s)-suffixLen:]
	}
	return s
}

// MaskSecret hides all but the edges of a credential for logging.
func MaskSecret(secret string) string {
	if len(secret) <= 8 {
		return strings.Repeat("*", len(secret))
	}
	return TruncateString(secret, 3, 4, "...")
}
