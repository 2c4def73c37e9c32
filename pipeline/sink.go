package pipeline

import (
	"context"

	"go.uber.org/multierr"
)

// Sink receives every decoded record.
type Sink interface {
	Name() string
	Publish(ctx context.Context, rec *Record) error
	Close() error
}

// closeSinks closes every sink and reports all failures together.
func closeSinks(sinks []Sink) error {
	var err error
	for _, s := range sinks {
		err = multierr.Append(err, s.Close())
	}
	return err
}
