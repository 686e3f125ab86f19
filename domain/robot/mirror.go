package robot

import (
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// MirrorSink wraps an optional sink, such as a telemetry feed, whose
// failures must not fail the command. Errors are logged and swallowed.
type MirrorSink struct {
	sink   Sink
	logger customlog.Logger
}

// Mirror wraps sink as a MirrorSink.
func Mirror(sink Sink, logger customlog.Logger) *MirrorSink {
	return &MirrorSink{sink: sink, logger: logger}
}

func (m *MirrorSink) Publish(cmd Command) error {
	if err := m.sink.Publish(cmd); err != nil {
		m.logger.Warnf("Mirror sink dropped %s #%d: %v", cmd.Kind, cmd.Seq, err)
	}
	return nil
}

func (m *MirrorSink) Close() error {
	return m.sink.Close()
}
