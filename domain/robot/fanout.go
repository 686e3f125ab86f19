package robot

import (
	"fmt"
	"sync"
	"time"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// Fanout implements Actuators by stamping each command with a sequence
// number and publishing it to every sink. A failing sink does not keep
// the others from receiving the command.
type Fanout struct {
	mu     sync.Mutex
	sinks  []Sink
	seq    uint64
	now    func() time.Time
	logger customlog.Logger
}

// NewFanout creates a Fanout over sinks.
func NewFanout(logger customlog.Logger, sinks ...Sink) *Fanout {
	return &Fanout{sinks: sinks, now: time.Now, logger: logger}
}

func (f *Fanout) Drive(l, r float64) error {
	return f.publish(Command{Kind: KindDrive, Left: l, Right: r})
}

func (f *Fanout) HeadPan(pan float64) error {
	return f.publish(Command{Kind: KindHeadPan, Value: pan})
}

func (f *Fanout) HeadTilt(tilt float64) error {
	return f.publish(Command{Kind: KindHeadTilt, Value: tilt})
}

func (f *Fanout) Waist(pos float64) error {
	return f.publish(Command{Kind: KindWaist, Value: pos})
}

func (f *Fanout) Stop() error {
	return f.publish(Command{Kind: KindStop})
}

func (f *Fanout) Say(phraseID int, text string) error {
	return f.publish(Command{Kind: KindSay, PhraseID: phraseID, Phrase: text})
}

// Close closes every sink and returns the first error.
func (f *Fanout) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var first error
	for _, s := range f.sinks {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// publish holds the lock across sinks so every sink sees commands in
// sequence order.
func (f *Fanout) publish(cmd Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	cmd.Seq = f.seq
	cmd.Time = f.now()

	var failed int
	var first error
	for _, s := range f.sinks {
		if err := s.Publish(cmd); err != nil {
			f.logger.Errorf("Actuator sink failed on %s #%d: %v", cmd.Kind, cmd.Seq, err)
			failed++
			if first == nil {
				first = err
			}
		}
	}
	if first != nil {
		return fmt.Errorf("%d of %d sinks failed for %s: %w", failed, len(f.sinks), cmd.Kind, first)
	}
	return nil
}
