package zeromq

import (
	"errors"

	"github.com/jun-zaga/RobotWebControl/domain/robot"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/wire"
)

// ActuatorSink publishes every applied command on topic "actuator.<kind>".
type ActuatorSink struct {
	publisher *Publisher
	logger    customlog.Logger
}

// NewActuatorSink wraps publisher as a robot.Sink. Closing the sink
// closes the publisher.
func NewActuatorSink(publisher *Publisher, logger customlog.Logger) *ActuatorSink {
	return &ActuatorSink{publisher: publisher, logger: logger}
}

func (s *ActuatorSink) Publish(cmd robot.Command) error {
	topic := wire.Topic(cmd)
	err := s.publisher.PublishMessage(topic, wire.Encode(cmd))
	if errors.Is(err, ErrServiceClosed) {
		return robot.ErrSinkClosed
	}
	if err != nil {
		return err
	}
	s.logger.Debugf("Published %s #%d", topic, cmd.Seq)
	return nil
}

func (s *ActuatorSink) Close() error {
	return s.publisher.Close()
}
