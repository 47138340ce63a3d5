package gateway

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an upstream call failed.
type ErrorKind int

const (
	// KindUnavailable is a transport failure: connection refused, DNS, timeout, cancellation.
	KindUnavailable ErrorKind = iota + 1
	// KindRejected is a non-2xx upstream response. Unknown ids land here too.
	KindRejected
	// KindMalformed is a 2xx response whose body is not the expected JSON shape.
	KindMalformed
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnavailable:
		return "upstream_unavailable"
	case KindRejected:
		return "upstream_rejected"
	case KindMalformed:
		return "upstream_malformed"
	default:
		return "unknown"
	}
}

// UpstreamError is the failure variant returned by the Fetch* operations.
type UpstreamError struct {
	Kind       ErrorKind
	Resource   string
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	switch e.Kind {
	case KindRejected:
		return fmt.Sprintf("%s: %s returned status %d", e.Kind, e.Resource, e.StatusCode)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Resource, e.Err)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// PayloadMessage is the text placed in the {"error": ...} payload.
// Rejections carry the raw upstream body; other failures carry the cause.
func (e *UpstreamError) PayloadMessage() string {
	if e.Kind == KindRejected {
		return e.Body
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func errorPayloadMessage(err error) string {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.PayloadMessage()
	}
	return err.Error()
}
