// Package mqtt mirrors applied actuator commands to an MQTT broker as JSON,
// one topic per actuator under a common prefix.
package mqtt

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	jsoniter "github.com/json-iterator/go"

	"github.com/jun-zaga/RobotWebControl/domain/robot"
	customlog "github.com/jun-zaga/RobotWebControl/pkg/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrPublishTimeout is returned when the broker does not acknowledge in time.
var ErrPublishTimeout = errors.New("mqtt publish timed out")

// DefaultPublishTimeout bounds each publish.
const DefaultPublishTimeout = 500 * time.Millisecond

// Publisher is the part of a paho client the sink needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

// Options configures a broker connection.
type Options struct {
	Broker         string
	ClientID       string
	TopicPrefix    string
	QoS            byte
	PublishTimeout time.Duration
}

// Sink publishes commands to "<prefix>/<kind>". Publish never waits for
// the broker: delivery is confirmed in the background and failures are
// only logged, so a slow or absent broker cannot hold up the robot.
type Sink struct {
	mu       sync.Mutex
	client   Publisher
	prefix   string
	qos      byte
	timeout  time.Duration
	logger   customlog.Logger
	closed   bool
	inflight sync.WaitGroup
}

// NewSink wraps an already connected client.
func NewSink(client Publisher, opts Options, logger customlog.Logger) *Sink {
	timeout := opts.PublishTimeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	return &Sink{
		client:  client,
		prefix:  strings.TrimRight(opts.TopicPrefix, "/"),
		qos:     opts.QoS,
		timeout: timeout,
		logger:  logger,
	}
}

// Connect dials the broker and returns a Sink on the new client. The
// client reconnects on its own after a lost connection.
func Connect(opts Options, logger customlog.Logger) (*Sink, error) {
	clientOpts := paho.NewClientOptions()
	clientOpts.AddBroker(opts.Broker)
	clientOpts.SetClientID(opts.ClientID)
	clientOpts.SetAutoReconnect(true)
	clientOpts.SetConnectRetry(true)
	clientOpts.SetConnectRetryInterval(5 * time.Second)
	clientOpts.OnConnect = func(paho.Client) {
		logger.Infof("Connected to MQTT broker %s", opts.Broker)
	}
	clientOpts.OnConnectionLost = func(_ paho.Client, err error) {
		logger.Warnf("MQTT connection lost: %v", err)
	}

	client := paho.NewClient(clientOpts)
	token := client.Connect()
	// With ConnectRetry the token completes only once connected; do not
	// hold startup hostage to the broker.
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", opts.Broker, token.Error())
	}
	return NewSink(client, opts, logger), nil
}

// Topic returns the topic cmd is published on.
func (s *Sink) Topic(cmd robot.Command) string {
	return s.prefix + "/" + cmd.Kind.String()
}

func (s *Sink) Publish(cmd robot.Command) error {
	payload, err := Payload(cmd)
	if err != nil {
		return err
	}
	topic := s.Topic(cmd)

	// Registering under the lock keeps Close from waiting before Add.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return robot.ErrSinkClosed
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	token := s.client.Publish(topic, s.qos, false, payload)
	go s.confirm(topic, cmd.Seq, token)
	return nil
}

// confirm waits for the broker's acknowledgement of one publish.
func (s *Sink) confirm(topic string, seq uint64, token paho.Token) {
	defer s.inflight.Done()
	if err := tokenError(token, s.timeout); err != nil {
		s.logger.Warnf("MQTT publish #%d not confirmed: %v: %s", seq, err, topic)
	}
}

func tokenError(token paho.Token, timeout time.Duration) error {
	if !token.WaitTimeout(timeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

// Close waits for pending confirmations, bounded by the publish timeout,
// then disconnects the client when it supports it.
func (s *Sink) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.inflight.Wait()
	if c, ok := s.client.(paho.Client); ok {
		c.Disconnect(250)
	}
	return nil
}

// Payload renders cmd as the JSON body bridges consume.
func Payload(cmd robot.Command) ([]byte, error) {
	body := map[string]interface{}{
		"seq": cmd.Seq,
	}
	if !cmd.Time.IsZero() {
		body["ts"] = cmd.Time.UnixMilli()
	}
	switch cmd.Kind {
	case robot.KindDrive:
		body["l"] = cmd.Left
		body["r"] = cmd.Right
	case robot.KindHeadPan, robot.KindHeadTilt, robot.KindWaist:
		body["value"] = cmd.Value
	case robot.KindSay:
		body["phraseId"] = cmd.PhraseID
		body["phrase"] = cmd.Phrase
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s payload: %w", cmd.Kind, err)
	}
	return data, nil
}
