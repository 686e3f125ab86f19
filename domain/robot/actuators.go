// Package robot applies validated commands to the robot's actuators and
// keeps the drive train stopped when commands stop arriving.
package robot

import (
	"errors"
	"time"
)

// ErrSinkClosed is returned by sinks used after Close.
var ErrSinkClosed = errors.New("actuator sink closed")

// Kind identifies an actuator command.
type Kind int8

const (
	KindDrive Kind = iota + 1
	KindHeadPan
	KindHeadTilt
	KindWaist
	KindStop
	KindSay
)

var kindNames = map[Kind]string{
	KindDrive:    "drive",
	KindHeadPan:  "head_pan",
	KindHeadTilt: "head_tilt",
	KindWaist:    "waist",
	KindStop:     "stop",
	KindSay:      "say",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Command is one actuator instruction as handed to sinks.
type Command struct {
	Kind Kind
	// Left and Right are wheel powers for KindDrive.
	Left  float64
	Right float64
	// Value is the servo target for head and waist kinds.
	Value    float64
	PhraseID int
	Phrase   string
	Seq      uint64
	Time     time.Time
}

// Actuators drives the physical robot. Values arrive already clamped:
// wheels to [-1,1], servos to [0,1].
type Actuators interface {
	Drive(l, r float64) error
	HeadPan(pan float64) error
	HeadTilt(tilt float64) error
	Waist(pos float64) error
	// Stop zeroes the wheels and holds the servos.
	Stop() error
	Say(phraseID int, text string) error
}

// Sink receives every command applied to the actuators.
type Sink interface {
	Publish(cmd Command) error
	Close() error
}
