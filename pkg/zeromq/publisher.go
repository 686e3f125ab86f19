// Package zeromq carries actuator commands to motor and servo bridges over
// a ZeroMQ PUB socket. Each message is two frames: the topic, then a
// FlatBuffers ActuatorCommand.
package zeromq

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pebbe/zmq4"

	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

// ErrServiceClosed is returned when publishing after Close.
var ErrServiceClosed = errors.New("zeromq publisher is closed")

// Publisher owns a bound PUB socket.
type Publisher struct {
	ctx     *zmq4.Context
	ownsCtx bool
	socket  *zmq4.Socket
	address string
	logger  customlog.Logger
	running bool
	mu      sync.Mutex
}

// NewPublisher binds a PUB socket on address. A nil ctx makes the
// Publisher create and later terminate its own context.
func NewPublisher(ctx *zmq4.Context, address string, logger customlog.Logger) (*Publisher, error) {
	ownsCtx := false
	if ctx == nil {
		var err error
		ctx, err = zmq4.NewContext()
		if err != nil {
			return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
		}
		ownsCtx = true
	}
	fail := func(err error) (*Publisher, error) {
		if ownsCtx {
			ctx.Term()
		}
		return nil, err
	}

	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		return fail(fmt.Errorf("failed to create PUB socket: %w", err))
	}

	// Linger 0 so a missing bridge never blocks shutdown.
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		return fail(fmt.Errorf("failed to set linger option: %w", err))
	}

	if err := socket.Bind(address); err != nil {
		socket.Close()
		return fail(fmt.Errorf("failed to bind to %s: %w", address, err))
	}

	logger.Infof("Actuator publisher bound on %s", address)

	return &Publisher{
		ctx:     ctx,
		ownsCtx: ownsCtx,
		socket:  socket,
		address: address,
		logger:  logger,
		running: true,
	}, nil
}

// PublishMessage sends topic and message as one multipart message.
func (p *Publisher) PublishMessage(topic string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrServiceClosed
	}

	if _, err := p.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := p.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Address returns the bound endpoint.
func (p *Publisher) Address() string {
	return p.address
}

// Close closes the socket, and the context when the Publisher created it.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	var first error
	if err := p.socket.Close(); err != nil {
		first = fmt.Errorf("failed to close PUB socket: %w", err)
	}
	p.socket = nil
	if p.ownsCtx {
		if err := p.ctx.Term(); err != nil && first == nil {
			first = fmt.Errorf("failed to terminate ZMQ context: %w", err)
		}
	}
	p.logger.Infof("Actuator publisher on %s closed", p.address)
	return first
}
