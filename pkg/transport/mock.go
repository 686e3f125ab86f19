package transport

import (
	"context"
	"sync"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// MockCall records one request seen by MockTransport.
type MockCall struct {
	Endpoint string
	Body     interface{}
	Beacon   bool
}

// mockHistory bounds the calls a MockTransport remembers.
const mockHistory = 256

// MockTransport never touches the network. It logs each request and
// answers {ok:true, mock:true}.
type MockTransport struct {
	logger customlog.Logger
	mu     sync.Mutex
	calls  []MockCall
}

// NewMockTransport creates a mock transport.
func NewMockTransport(logger customlog.Logger) *MockTransport {
	return &MockTransport{logger: logger}
}

// PostJSON implements Transport.
func (m *MockTransport) PostJSON(_ context.Context, endpoint string, body interface{}) Result {
	encoded, _ := json.Marshal(body)
	m.logger.Infof("FAKE POST: %s %s", endpoint, encoded)
	m.record(MockCall{Endpoint: endpoint, Body: body})
	return Result{OK: true, Mock: true}
}

// Beacon implements Transport.
func (m *MockTransport) Beacon(_ context.Context, endpoint string, payload string) bool {
	m.logger.Infof("FAKE BEACON: %s %s", endpoint, payload)
	m.record(MockCall{Endpoint: endpoint, Body: payload, Beacon: true})
	return true
}

// Calls returns a copy of the most recent recorded requests.
func (m *MockTransport) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockTransport) record(c MockCall) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == mockHistory {
		m.calls = append(m.calls[:0], m.calls[1:]...)
	}
	m.calls = append(m.calls, c)
}
