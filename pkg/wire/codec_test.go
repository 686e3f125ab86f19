package wire

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jun-zaga/RobotWebControl/domain/robot"
	"github.com/jun-zaga/RobotWebControl/pkg/wire/actuator"
)

func TestEncodeDecodeSay(t *testing.T) {
	in := robot.Command{
		Kind:     robot.KindSay,
		PhraseID: 2,
		Phrase:   "Hunter is so cool.",
		Seq:      41,
		Time:     time.Unix(1700000000, 123456789),
	}

	out, err := Decode(Encode(in))
	require.NoError(t, err)
	assert.Equal(t, in.Kind, out.Kind)
	assert.Equal(t, in.PhraseID, out.PhraseID)
	assert.Equal(t, in.Phrase, out.Phrase)
	assert.Equal(t, in.Seq, out.Seq)
	assert.True(t, in.Time.Equal(out.Time))
}

func TestEncodeDriveFields(t *testing.T) {
	buf := Encode(robot.Command{Kind: robot.KindDrive, Left: 0.5, Right: -1, Seq: 7})

	fb := actuator.GetRootAsActuatorCommand(buf, 0)
	assert.Equal(t, actuator.KindDrive, fb.Kind())
	assert.Equal(t, 0.5, fb.Left())
	assert.Equal(t, -1.0, fb.Right())
	assert.Nil(t, fb.Phrase())
	assert.Equal(t, int64(0), fb.TimestampNs())
}

func TestDecodeShortFrame(t *testing.T) {
	_, err := Decode([]byte{1, 2})
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "actuator.head_pan", Topic(robot.Command{Kind: robot.KindHeadPan}))
	assert.Equal(t, "actuator.stop", Topic(robot.Command{Kind: robot.KindStop}))
}
