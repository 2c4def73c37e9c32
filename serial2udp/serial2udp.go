// Command serial2udp forwards sentences from a serial AIS receiver to one or
// more UDP destinations, dropping lines that fail the checksum.
package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/decoder"
	"github.com/kintel/aisdecoder/logging"
	"github.com/kintel/aisdecoder/pipeline"
	"github.com/kintel/aisdecoder/source"
)

func main() {
	serialPort := flag.String("serial-port", "/dev/ttyUSB0", "Serial port device")
	baud := flag.Int("baud", 38400, "Baud rate")
	udpAddrs := flag.String("udp", "127.0.0.1:8101", "Comma-separated UDP destinations")
	noVerify := flag.Bool("no-verify", false, "Forward lines without checking framing and checksum")
	debug := flag.Bool("debug", false, "Enable debug logging of forwarded data")
	flag.Parse()

	log := logging.New(*debug)
	defer log.Sync()

	dests := splitAndTrim(*udpAddrs, ",")
	conns := make([]net.Conn, 0, len(dests))
	for _, d := range dests {
		c, err := net.Dial("udp", d)
		if err != nil {
			log.Fatal("invalid UDP destination", zap.String("addr", d), zap.Error(err))
		}
		defer c.Close()
		conns = append(conns, c)
		log.Info("forwarding", zap.String("addr", d))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lines := make(chan pipeline.Line, 256)
	errc := make(chan error, 1)
	go func() {
		errc <- source.NewSerial(*serialPort, *baud, log).Run(ctx, lines)
		close(lines)
	}()

	var forwarded, dropped int
	for line := range lines {
		if !*noVerify {
			if _, err := decoder.ParseSentence(line.Text); err != nil {
				dropped++
				log.Debug("dropped", zap.String("sentence", line.Text), zap.Error(err))
				continue
			}
		}
		frame := []byte(line.Text + "\r\n")
		for _, c := range conns {
			c.Write(frame) // no retry
		}
		forwarded++
		log.Debug("forwarded", zap.String("sentence", line.Text))
	}
	if err := <-errc; err != nil {
		log.Fatal("serial read error", zap.Error(err))
	}
	log.Info("stopped", zap.Int("forwarded", forwarded), zap.Int("dropped", dropped))
}

// splitAndTrim splits and trims.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
