package actuator

import (
	"os"
	"regexp"
	"strings"
	"testing"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// schemaFields lists the ActuatorCommand fields in ../schema order.
func schemaFields(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile("../schema/actuator_command.fbs")
	require.NoError(t, err)

	body := regexp.MustCompile(`(?s)table ActuatorCommand \{(.*?)\}`).FindStringSubmatch(string(data))
	require.Len(t, body, 2)

	var fields []string
	for _, line := range strings.Split(body[1], "\n") {
		line = strings.TrimSpace(line)
		if name, _, ok := strings.Cut(line, ":"); ok {
			fields = append(fields, name)
		}
	}
	return fields
}

func TestAccessorsFollowSchemaSlots(t *testing.T) {
	assert.Equal(t, []string{
		"kind", "left", "right", "value", "phrase_id", "phrase", "seq", "timestamp_ns",
	}, schemaFields(t))

	// Write each scalar into its schema slot directly and read it back
	// through the accessor.
	b := flatbuffers.NewBuilder(128)
	b.StartObject(8)
	b.PrependInt8Slot(0, int8(KindWaist), 0)
	b.PrependFloat64Slot(1, 0.25, 0)
	b.PrependFloat64Slot(2, -0.5, 0)
	b.PrependFloat64Slot(3, 0.75, 0)
	b.PrependInt32Slot(4, 3, 0)
	b.PrependUint64Slot(6, 99, 0)
	b.PrependInt64Slot(7, 1234, 0)
	b.Finish(b.EndObject())

	cmd := GetRootAsActuatorCommand(b.FinishedBytes(), 0)
	assert.Equal(t, KindWaist, cmd.Kind())
	assert.Equal(t, 0.25, cmd.Left())
	assert.Equal(t, -0.5, cmd.Right())
	assert.Equal(t, 0.75, cmd.Value())
	assert.Equal(t, int32(3), cmd.PhraseId())
	assert.Nil(t, cmd.Phrase())
	assert.Equal(t, uint64(99), cmd.Seq())
	assert.Equal(t, int64(1234), cmd.TimestampNs())
}
