package transport

// Robot API endpoints consumed by the console.
const (
	EndpointDrive = "/api/drive"
	EndpointStop  = "/api/stop"
	EndpointHead  = "/api/head"
	EndpointWaist = "/api/waist"
	EndpointSay   = "/api/say"
)

// StopPayload is the raw body sent by the unload beacon.
const StopPayload = "{}"

// DriveBody carries wheel powers, each in [-1,1].
type DriveBody struct {
	L float64 `json:"l"`
	R float64 `json:"r"`
}

// StopBody marshals to {}.
type StopBody struct{}

// HeadBody carries head servo targets in [0,1].
type HeadBody struct {
	Pan  float64 `json:"pan"`
	Tilt float64 `json:"tilt"`
}

// WaistBody carries the waist servo target in [0,1].
type WaistBody struct {
	Pos float64 `json:"pos"`
}

// SayBody triggers a canned phrase.
type SayBody struct {
	PhraseID int `json:"phraseId"`
}
