package robot

import (
	"fmt"
	"sync"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// LogSink prints each command, standing in for motor and servo drivers.
type LogSink struct {
	mu     sync.Mutex
	logger customlog.Logger
	closed bool
}

// NewLogSink creates a LogSink writing to logger.
func NewLogSink(logger customlog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Publish(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	s.logger.Infof("%s", FormatCommand(cmd))
	return nil
}

func (s *LogSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// FormatCommand renders cmd the way the robot's console prints it.
func FormatCommand(cmd Command) string {
	switch cmd.Kind {
	case KindDrive:
		return fmt.Sprintf("[drive] l=%.2f r=%.2f", cmd.Left, cmd.Right)
	case KindHeadPan, KindHeadTilt, KindWaist:
		return fmt.Sprintf("[%s] %.2f", cmd.Kind, cmd.Value)
	case KindStop:
		return "[stop] wheels -> 0, hold servos"
	case KindSay:
		return fmt.Sprintf("[say] %s", cmd.Phrase)
	default:
		return fmt.Sprintf("[%s]", cmd.Kind)
	}
}
