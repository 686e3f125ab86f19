// Package gamepad drives a joystick controller from a physical gamepad.
// The left stick steers while the deadman button is held; releasing the
// button or losing the device stops the robot.
package gamepad

import (
	"context"
	"fmt"
	"time"

	js "github.com/0xcafed00d/joystick"

	"github.com/jun-zaga/RobotWebControl/pkg/joystick"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// PointerID identifies gamepad drags; browsers never use negative ids.
const PointerID = -1

// axisMax is the magnitude of a fully deflected stick.
const axisMax = 32767

// stickGeometry maps raw axis values onto the joystick normalizer.
var stickGeometry = joystick.Geometry{Radius: axisMax}

// Reader is the part of a gamepad device the Source polls.
type Reader interface {
	Read() (js.State, error)
}

// Driver is the joystick controller the gamepad steers.
type Driver interface {
	PointerDown(s joystick.PointerSample, g joystick.Geometry) joystick.State
	PointerMove(s joystick.PointerSample, g joystick.Geometry) joystick.State
	PointerUp(pointerID int) joystick.State
	Stop() joystick.State
}

// Options configures a Source.
type Options struct {
	Index         int
	DeadmanButton int
	PollHz        int
}

// Source polls a gamepad and feeds a Driver.
type Source struct {
	dev    Reader
	driver Driver
	opts   Options
	logger customlog.Logger
	held   bool
}

// Open opens gamepad opts.Index.
func Open(opts Options, driver Driver, logger customlog.Logger) (*Source, func(), error) {
	dev, err := js.Open(opts.Index)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open gamepad %d: %w", opts.Index, err)
	}
	logger.Infof("Gamepad %d opened: %s (%d axes, %d buttons)", opts.Index, dev.Name(), dev.AxisCount(), dev.ButtonCount())
	return New(dev, driver, opts, logger), dev.Close, nil
}

// New creates a Source over an open device.
func New(dev Reader, driver Driver, opts Options, logger customlog.Logger) *Source {
	if opts.PollHz <= 0 {
		opts.PollHz = 50
	}
	return &Source{dev: dev, driver: driver, opts: opts, logger: logger}
}

// Run polls until ctx is done or the device fails. Either way the robot is
// left stopped if a drag was in progress.
func (s *Source) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / time.Duration(s.opts.PollHz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.release()
			return ctx.Err()
		case <-ticker.C:
			if err := s.Poll(); err != nil {
				return err
			}
		}
	}
}

// Poll reads the device once and updates the driver.
func (s *Source) Poll() error {
	state, err := s.dev.Read()
	if err != nil {
		s.logger.Errorf("Gamepad read failed, stopping: %v", err)
		s.held = false
		s.driver.Stop()
		return fmt.Errorf("reading gamepad: %w", err)
	}

	deadman := state.Buttons&(1<<uint(s.opts.DeadmanButton)) != 0
	if !deadman {
		s.release()
		return nil
	}

	sample := joystick.PointerSample{PointerID: PointerID}
	if len(state.AxisData) > 1 {
		sample.X = float64(state.AxisData[0])
		sample.Y = float64(state.AxisData[1])
	}
	if !s.held {
		s.held = true
		s.logger.Debugf("Gamepad deadman pressed")
		s.driver.PointerDown(sample, stickGeometry)
		return nil
	}
	s.driver.PointerMove(sample, stickGeometry)
	return nil
}

func (s *Source) release() {
	if !s.held {
		return
	}
	s.held = false
	s.logger.Debugf("Gamepad deadman released")
	s.driver.PointerUp(PointerID)
}
