package actuator

import "strconv"

type Kind int8

const (
	KindUnknown  Kind = 0
	KindDrive    Kind = 1
	KindHeadPan  Kind = 2
	KindHeadTilt Kind = 3
	KindWaist    Kind = 4
	KindStop     Kind = 5
	KindSay      Kind = 6
)

var EnumNamesKind = map[Kind]string{
	KindUnknown:  "Unknown",
	KindDrive:    "Drive",
	KindHeadPan:  "HeadPan",
	KindHeadTilt: "HeadTilt",
	KindWaist:    "Waist",
	KindStop:     "Stop",
	KindSay:      "Say",
}

var EnumValuesKind = map[string]Kind{
	"Unknown":  KindUnknown,
	"Drive":    KindDrive,
	"HeadPan":  KindHeadPan,
	"HeadTilt": KindHeadTilt,
	"Waist":    KindWaist,
	"Stop":     KindStop,
	"Say":      KindSay,
}

func (v Kind) String() string {
	if s, ok := EnumNamesKind[v]; ok {
		return s
	}
	return "Kind(" + strconv.FormatInt(int64(v), 10) + ")"
}
