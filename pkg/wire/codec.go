// Package wire encodes actuator commands as FlatBuffers frames for the
// motor and servo bridges.
package wire

import (
	"errors"
	"fmt"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"

	"github.com/jun-zaga/RobotWebControl/domain/robot"
	"github.com/jun-zaga/RobotWebControl/pkg/wire/actuator"
)

// ErrShortFrame is returned for buffers too small to hold a root table.
var ErrShortFrame = errors.New("frame too short")

// Topic returns the bus topic for cmd, e.g. "actuator.drive".
func Topic(cmd robot.Command) string {
	return "actuator." + cmd.Kind.String()
}

// Encode serializes cmd into a finished FlatBuffers buffer.
func Encode(cmd robot.Command) []byte {
	builder := flatbuffers.NewBuilder(128)

	var phrase flatbuffers.UOffsetT
	if cmd.Phrase != "" {
		phrase = builder.CreateString(cmd.Phrase)
	}

	actuator.ActuatorCommandStart(builder)
	actuator.ActuatorCommandAddKind(builder, actuator.Kind(cmd.Kind))
	actuator.ActuatorCommandAddLeft(builder, cmd.Left)
	actuator.ActuatorCommandAddRight(builder, cmd.Right)
	actuator.ActuatorCommandAddValue(builder, cmd.Value)
	actuator.ActuatorCommandAddPhraseId(builder, int32(cmd.PhraseID))
	if cmd.Phrase != "" {
		actuator.ActuatorCommandAddPhrase(builder, phrase)
	}
	actuator.ActuatorCommandAddSeq(builder, cmd.Seq)
	if !cmd.Time.IsZero() {
		actuator.ActuatorCommandAddTimestampNs(builder, cmd.Time.UnixNano())
	}
	root := actuator.ActuatorCommandEnd(builder)
	actuator.FinishActuatorCommandBuffer(builder, root)
	return builder.FinishedBytes()
}

// Decode reads a frame produced by Encode.
func Decode(buf []byte) (cmd robot.Command, err error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return robot.Command{}, ErrShortFrame
	}
	defer func() {
		// The generated accessors index the buffer without bounds checks.
		if r := recover(); r != nil {
			cmd = robot.Command{}
			err = fmt.Errorf("corrupt actuator frame: %v", r)
		}
	}()

	fb := actuator.GetRootAsActuatorCommand(buf, 0)
	cmd = robot.Command{
		Kind:     robot.Kind(fb.Kind()),
		Left:     fb.Left(),
		Right:    fb.Right(),
		Value:    fb.Value(),
		PhraseID: int(fb.PhraseId()),
		Phrase:   string(fb.Phrase()),
		Seq:      fb.Seq(),
	}
	if ts := fb.TimestampNs(); ts != 0 {
		cmd.Time = time.Unix(0, ts)
	}
	return cmd, nil
}
