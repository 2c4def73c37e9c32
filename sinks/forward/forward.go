// Package forward relays the raw sentences of every decoded message to a
// UDP aggregator.
package forward

import (
	"context"
	"net"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/kintel/aisdecoder/pipeline"
)

type Forwarder struct {
	conn net.Conn
}

// Dial connects to the aggregator at host:port.
func Dial(addr string) (*Forwarder, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create UDP connection to %s", addr)
	}
	return &Forwarder{conn: conn}, nil
}

func (f *Forwarder) Name() string { return "forward" }

// Publish sends all sentences of the message in one datagram.
func (f *Forwarder) Publish(_ context.Context, rec *pipeline.Record) error {
	payload := strings.Join(rec.Sentences, "\r\n") + "\r\n"
	_, err := f.conn.Write([]byte(payload))
	return err
}

func (f *Forwarder) Close() error { return f.conn.Close() }
