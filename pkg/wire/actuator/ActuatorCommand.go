// Package actuator holds the table accessors for the ActuatorCommand frame
// defined in ../schema/actuator_command.fbs. They follow the layout flatc
// emits for Go: one vtable slot per field in schema order, so a field added
// to the schema must be appended here with the next slot.
package actuator

import (
	flatbuffers "github.com/google/flatbuffers/go"
)

type ActuatorCommand struct {
	_tab flatbuffers.Table
}

func GetRootAsActuatorCommand(buf []byte, offset flatbuffers.UOffsetT) *ActuatorCommand {
	n := flatbuffers.GetUOffsetT(buf[offset:])
	x := &ActuatorCommand{}
	x.Init(buf, n+offset)
	return x
}

func FinishActuatorCommandBuffer(builder *flatbuffers.Builder, offset flatbuffers.UOffsetT) {
	builder.Finish(offset)
}

func (rcv *ActuatorCommand) Init(buf []byte, i flatbuffers.UOffsetT) {
	rcv._tab.Bytes = buf
	rcv._tab.Pos = i
}

func (rcv *ActuatorCommand) Table() flatbuffers.Table {
	return rcv._tab
}

func (rcv *ActuatorCommand) Kind() Kind {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(4))
	if o != 0 {
		return Kind(rcv._tab.GetInt8(o + rcv._tab.Pos))
	}
	return 0
}

func (rcv *ActuatorCommand) MutateKind(n Kind) bool {
	return rcv._tab.MutateInt8Slot(4, int8(n))
}

func (rcv *ActuatorCommand) Left() float64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(6))
	if o != 0 {
		return rcv._tab.GetFloat64(o + rcv._tab.Pos)
	}
	return 0.0
}

func (rcv *ActuatorCommand) Right() float64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(8))
	if o != 0 {
		return rcv._tab.GetFloat64(o + rcv._tab.Pos)
	}
	return 0.0
}

func (rcv *ActuatorCommand) Value() float64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(10))
	if o != 0 {
		return rcv._tab.GetFloat64(o + rcv._tab.Pos)
	}
	return 0.0
}

func (rcv *ActuatorCommand) PhraseId() int32 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(12))
	if o != 0 {
		return rcv._tab.GetInt32(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *ActuatorCommand) Phrase() []byte {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(14))
	if o != 0 {
		return rcv._tab.ByteVector(o + rcv._tab.Pos)
	}
	return nil
}

func (rcv *ActuatorCommand) Seq() uint64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(16))
	if o != 0 {
		return rcv._tab.GetUint64(o + rcv._tab.Pos)
	}
	return 0
}

func (rcv *ActuatorCommand) TimestampNs() int64 {
	o := flatbuffers.UOffsetT(rcv._tab.Offset(18))
	if o != 0 {
		return rcv._tab.GetInt64(o + rcv._tab.Pos)
	}
	return 0
}

func ActuatorCommandStart(builder *flatbuffers.Builder) {
	builder.StartObject(8)
}
func ActuatorCommandAddKind(builder *flatbuffers.Builder, kind Kind) {
	builder.PrependInt8Slot(0, int8(kind), 0)
}
func ActuatorCommandAddLeft(builder *flatbuffers.Builder, left float64) {
	builder.PrependFloat64Slot(1, left, 0.0)
}
func ActuatorCommandAddRight(builder *flatbuffers.Builder, right float64) {
	builder.PrependFloat64Slot(2, right, 0.0)
}
func ActuatorCommandAddValue(builder *flatbuffers.Builder, value float64) {
	builder.PrependFloat64Slot(3, value, 0.0)
}
func ActuatorCommandAddPhraseId(builder *flatbuffers.Builder, phraseId int32) {
	builder.PrependInt32Slot(4, phraseId, 0)
}
func ActuatorCommandAddPhrase(builder *flatbuffers.Builder, phrase flatbuffers.UOffsetT) {
	builder.PrependUOffsetTSlot(5, flatbuffers.UOffsetT(phrase), 0)
}
func ActuatorCommandAddSeq(builder *flatbuffers.Builder, seq uint64) {
	builder.PrependUint64Slot(6, seq, 0)
}
func ActuatorCommandAddTimestampNs(builder *flatbuffers.Builder, timestampNs int64) {
	builder.PrependInt64Slot(7, timestampNs, 0)
}
func ActuatorCommandEnd(builder *flatbuffers.Builder) flatbuffers.UOffsetT {
	return builder.EndObject()
}
