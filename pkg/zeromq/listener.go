package zeromq

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pebbe/zmq4"

	"github.com/jun-zaga/RobotWebControl/domain/robot"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
	"github.com/jun-zaga/RobotWebControl/pkg/wire"
)

// CommandHandler receives decoded actuator commands.
type CommandHandler func(topic string, cmd robot.Command)

// Listener subscribes to an actuator publisher, the way a motor bridge
// does, and decodes each frame.
type Listener struct {
	socket  *zmq4.Socket
	handler CommandHandler
	logger  customlog.Logger
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewListener connects a SUB socket to address, subscribed to topics
// starting with prefix ("" for all).
func NewListener(ctx *zmq4.Context, address, prefix string, handler CommandHandler, logger customlog.Logger) (*Listener, error) {
	var (
		socket *zmq4.Socket
		err    error
	)
	if ctx != nil {
		socket, err = ctx.NewSocket(zmq4.SUB)
	} else {
		socket, err = zmq4.NewSocket(zmq4.SUB)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create SUB socket: %w", err)
	}

	// Receive timeout lets the loop notice Stop.
	if err := socket.SetRcvtimeo(250 * time.Millisecond); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set receive timeout: %w", err)
	}
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.SetSubscribe(prefix); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to subscribe to %q: %w", prefix, err)
	}
	if err := socket.Connect(address); err != nil {
		socket.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}

	return &Listener{socket: socket, handler: handler, logger: logger}, nil
}

// Start begins receiving in the background.
func (l *Listener) Start() {
	if !l.running.CompareAndSwap(false, true) {
		return
	}
	l.wg.Add(1)
	go l.receiveLoop()
}

// Stop ends the receive loop and closes the socket.
func (l *Listener) Stop() {
	if !l.running.CompareAndSwap(true, false) {
		return
	}
	l.wg.Wait()
}

func (l *Listener) receiveLoop() {
	defer l.wg.Done()
	// Sockets are not thread safe; the loop owns this one until it exits.
	defer l.socket.Close()

	for l.running.Load() {
		parts, err := l.socket.RecvMessageBytes(0)
		if err != nil {
			// Timeouts surface as EAGAIN.
			continue
		}
		if len(parts) != 2 {
			l.logger.Warnf("Ignoring actuator message with %d frames", len(parts))
			continue
		}

		cmd, err := wire.Decode(parts[1])
		if err != nil {
			l.logger.Warnf("Ignoring actuator frame on %s: %v", parts[0], err)
			continue
		}
		l.handler(string(parts[0]), cmd)
	}
}
