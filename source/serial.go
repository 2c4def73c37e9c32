package source

import (
	"context"
	"io"

	"github.com/cockroachdb/errors"
	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/pipeline"
)

// Serial reads from an AIS receiver on a serial port.
type Serial struct {
	Port string
	Baud int
	Log  *zap.Logger

	open func(port string, mode *serial.Mode) (io.ReadCloser, error)
}

func NewSerial(port string, baud int, log *zap.Logger) *Serial {
	return &Serial{Port: port, Baud: baud, Log: log, open: openSerial}
}

func openSerial(port string, mode *serial.Mode) (io.ReadCloser, error) {
	return serial.Open(port, mode)
}

func (s *Serial) Name() string { return "serial" }

func (s *Serial) Run(ctx context.Context, out chan<- pipeline.Line) error {
	port, err := s.open(s.Port, &serial.Mode{BaudRate: s.Baud})
	if err != nil {
		return errors.Wrapf(err, "failed to open serial port %s", s.Port)
	}
	s.Log.Info("reading serial port", zap.String("port", s.Port), zap.Int("baud", s.Baud))

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		port.Close()
	}()

	err = scanLines(ctx, port, s.Name(), out)
	if ctx.Err() != nil {
		return nil
	}
	return errors.Wrapf(err, "serial port %s", s.Port)
}
