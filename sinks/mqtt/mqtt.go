// Package mqtt publishes decoded records to an MQTT broker.
package mqtt

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/pipeline"
)

type Options struct {
	Server   string // host:port
	TLS      bool
	Username string
	Password string
	Topic    string
	ClientID string
}

// client is the part of paho.Client the sink uses.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Disconnect(quiesce uint)
}

type Sink struct {
	c       client
	topic   string
	timeout time.Duration
	log     *zap.Logger
}

// Dial connects to the broker.
func Dial(o Options, log *zap.Logger) (*Sink, error) {
	opts := paho.NewClientOptions()
	scheme := "tcp://"
	if o.TLS {
		scheme = "ssl://"
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.AddBroker(scheme + o.Server)
	if o.Username != "" {
		opts.SetUsername(o.Username)
		opts.SetPassword(o.Password)
	}
	if o.ClientID == "" {
		o.ClientID = "aisdecoder"
	}
	opts.SetClientID(o.ClientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	c := paho.NewClient(opts)
	token := c.Connect()
	if token.Wait() && token.Error() != nil {
		return nil, errors.Wrapf(token.Error(), "failed to connect to MQTT broker %s", o.Server)
	}
	log.Info("connected to MQTT broker", zap.String("server", o.Server))
	return newSink(c, o.Topic, log), nil
}

func newSink(c client, topic string, log *zap.Logger) *Sink {
	return &Sink{c: c, topic: topic, timeout: 5 * time.Second, log: log}
}

func (s *Sink) Name() string { return "mqtt" }

// Topic returns <topic>/<mmsi>/<message id>/message.
func (s *Sink) Topic(rec *pipeline.Record) string {
	return fmt.Sprintf("%s/%d/%d/message", s.topic, rec.MMSI, rec.MessageType)
}

func (s *Sink) Publish(ctx context.Context, rec *pipeline.Record) error {
	// the source address stays private
	out := *rec
	out.Source = ""
	payload, err := json.Marshal(&out)
	if err != nil {
		return errors.Wrap(err, "failed to marshal record")
	}
	token := s.c.Publish(s.Topic(rec), 0, false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.timeout):
		return errors.Newf("publish to %s timed out", s.Topic(rec))
	}
	return token.Error()
}

func (s *Sink) Close() error {
	s.c.Disconnect(250)
	return nil
}
