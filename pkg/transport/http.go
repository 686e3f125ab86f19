package transport

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/imroc/req/v3"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// HTTPTransport talks to the robot daemon over HTTP.
type HTTPTransport struct {
	client *req.Client
	logger customlog.Logger
}

// NewHTTPTransport creates a transport for the robot at baseURL. A zero
// timeout leaves requests unbounded.
func NewHTTPTransport(baseURL string, timeout time.Duration, logger customlog.Logger) *HTTPTransport {
	client := req.C().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetUserAgent("robotweb-console").
		SetJsonMarshal(json.Marshal).
		SetJsonUnmarshal(json.Unmarshal)
	if timeout > 0 {
		client.SetTimeout(timeout)
	}
	return &HTTPTransport{client: client, logger: logger}
}

// PostJSON implements Transport.
func (t *HTTPTransport) PostJSON(ctx context.Context, endpoint string, body interface{}) Result {
	payload, err := json.Marshal(body)
	if err != nil {
		return Failed(fmt.Errorf("failed to encode body for %s: %w", endpoint, err))
	}

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBodyBytes(payload).
		Post(endpoint)
	if err != nil {
		t.logger.Debugf("POST %s failed: %v", endpoint, err)
		return Failed(err)
	}

	data, err := resp.ToBytes()
	if err != nil {
		return Failed(fmt.Errorf("failed to read response from %s: %w", endpoint, err))
	}
	return parseResult(data)
}

// Beacon implements Transport. The payload is sent as text/plain, the way
// a browser beacon delivers a string.
func (t *HTTPTransport) Beacon(ctx context.Context, endpoint string, payload string) bool {
	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "text/plain;charset=UTF-8").
		SetBodyString(payload).
		Post(endpoint)
	if err != nil {
		t.logger.Warnf("Beacon to %s failed: %v", endpoint, err)
		return false
	}
	return resp.StatusCode < 500
}
