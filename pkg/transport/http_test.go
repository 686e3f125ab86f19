package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

type capturedRequest struct {
	path        string
	contentType string
	body        string
}

func newRobotStub(t *testing.T, status int, answer string) (*httptest.Server, func() []capturedRequest) {
	t.Helper()
	var mu sync.Mutex
	var seen []capturedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		seen = append(seen, capturedRequest{path: r.URL.Path, contentType: r.Header.Get("Content-Type"), body: string(data)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, answer)
	}))
	t.Cleanup(srv.Close)

	return srv, func() []capturedRequest {
		mu.Lock()
		defer mu.Unlock()
		return append([]capturedRequest(nil), seen...)
	}
}

func TestHTTPTransportPostJSON(t *testing.T) {
	srv, seen := newRobotStub(t, http.StatusOK, `{"ok":true,"l":0.5,"r":-0.25}`)
	tr := NewHTTPTransport(srv.URL+"/", time.Second, customlog.Discard())

	res := tr.PostJSON(context.Background(), EndpointDrive, DriveBody{L: 0.5, R: -0.25})

	assert.True(t, res.OK)
	assert.Empty(t, res.Error)
	assert.Equal(t, 0.5, res.Body["l"])

	reqs := seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/drive", reqs[0].path)
	assert.Equal(t, "application/json", reqs[0].contentType)
	assert.JSONEq(t, `{"l":0.5,"r":-0.25}`, reqs[0].body)
}

func TestHTTPTransportStopBodyIsEmptyObject(t *testing.T) {
	srv, seen := newRobotStub(t, http.StatusOK, `{"ok":true}`)
	tr := NewHTTPTransport(srv.URL, time.Second, customlog.Discard())

	res := tr.PostJSON(context.Background(), EndpointStop, StopBody{})

	assert.True(t, res.OK)
	assert.Equal(t, "{}", seen()[0].body)
}

func TestHTTPTransportValidationErrorIsParsed(t *testing.T) {
	srv, _ := newRobotStub(t, http.StatusBadRequest, `{"ok":false,"error":"l and r must be numbers"}`)
	tr := NewHTTPTransport(srv.URL, time.Second, customlog.Discard())

	res := tr.PostJSON(context.Background(), EndpointDrive, map[string]interface{}{"l": "x"})

	assert.False(t, res.OK)
	assert.Equal(t, "l and r must be numbers", res.Error)
}

func TestHTTPTransportNonJSONAnswer(t *testing.T) {
	srv, _ := newRobotStub(t, http.StatusOK, `<html>oops</html>`)
	tr := NewHTTPTransport(srv.URL, time.Second, customlog.Discard())

	res := tr.PostJSON(context.Background(), EndpointWaist, WaistBody{Pos: 0.3})

	assert.False(t, res.OK)
	assert.Contains(t, res.Error, "invalid JSON response")
}

func TestHTTPTransportUnreachableRobot(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tr := NewHTTPTransport(url, time.Second, customlog.Discard())
	res := tr.PostJSON(context.Background(), EndpointDrive, DriveBody{})

	assert.False(t, res.OK)
	assert.NotEmpty(t, res.Error)
	assert.False(t, tr.Beacon(context.Background(), EndpointStop, StopPayload))
}

func TestHTTPTransportBeacon(t *testing.T) {
	srv, seen := newRobotStub(t, http.StatusOK, `{"ok":true}`)
	tr := NewHTTPTransport(srv.URL, time.Second, customlog.Discard())

	assert.True(t, tr.Beacon(context.Background(), EndpointStop, StopPayload))

	reqs := seen()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/stop", reqs[0].path)
	assert.Equal(t, "{}", reqs[0].body)
	assert.Contains(t, reqs[0].contentType, "text/plain")
}

func TestMockTransport(t *testing.T) {
	m := NewMockTransport(customlog.Discard())

	res := m.PostJSON(context.Background(), EndpointSay, SayBody{PhraseID: 2})
	assert.True(t, m.Beacon(context.Background(), EndpointStop, StopPayload))

	assert.Equal(t, Result{OK: true, Mock: true}, res)
	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, EndpointSay, calls[0].Endpoint)
	assert.True(t, calls[1].Beacon)
}
