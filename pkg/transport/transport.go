// Package transport carries console commands to the robot API.
//
// Calls never return Go errors: every failure is folded into a Result so
// callers can fire and forget.
package transport

import (
	"context"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Result is the robot's parsed JSON answer, or {ok:false, error} when the
// request could not be completed or the answer was not JSON.
type Result struct {
	OK    bool                   `json:"ok"`
	Error string                 `json:"error,omitempty"`
	Mock  bool                   `json:"mock,omitempty"`
	Body  map[string]interface{} `json:"-"`
}

// Failed builds the result of an undelivered request.
func Failed(err error) Result {
	return Result{OK: false, Error: err.Error()}
}

// Transport posts commands to the robot.
type Transport interface {
	// PostJSON sends body as JSON and parses the JSON answer.
	PostJSON(ctx context.Context, endpoint string, body interface{}) Result
	// Beacon sends a raw, non-JSON payload best effort. It reports whether
	// the payload was handed to the robot.
	Beacon(ctx context.Context, endpoint string, payload string) bool
}

// parseResult decodes a robot answer into a Result.
func parseResult(data []byte) Result {
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		return Result{OK: false, Error: "invalid JSON response: " + err.Error()}
	}
	res := Result{Body: body}
	if ok, isBool := body["ok"].(bool); isBool {
		res.OK = ok
	}
	if msg, isString := body["error"].(string); isString {
		res.Error = msg
	}
	if mock, isBool := body["mock"].(bool); isBool {
		res.Mock = mock
	}
	return res
}
