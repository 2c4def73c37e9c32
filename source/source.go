// Package source reads raw NMEA lines from serial ports, UDP and files.
package source

import (
	"bufio"
	"context"
	"io"
	"strings"
	"time"

	"github.com/kintel/aisdecoder/pipeline"
)

// Source delivers lines until ctx is done or the input ends.
type Source interface {
	Name() string
	Run(ctx context.Context, out chan<- pipeline.Line) error
}

// isSentence reports whether line looks like an NMEA sentence.
func isSentence(line string) bool {
	return len(line) > 0 && (line[0] == '!' || line[0] == '$')
}

func emit(ctx context.Context, out chan<- pipeline.Line, text, name string) bool {
	select {
	case out <- pipeline.Line{Text: text, Source: name, Received: time.Now()}:
		return true
	case <-ctx.Done():
		return false
	}
}

func scanLines(ctx context.Context, r io.Reader, name string, out chan<- pipeline.Line) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !isSentence(line) {
			continue
		}
		if !emit(ctx, out, line, name) {
			return nil
		}
	}
	return scanner.Err()
}

// Reader reads lines from any io.Reader, such as a file or stdin.
type Reader struct {
	Label string
	R     io.Reader
}

func (r *Reader) Name() string { return r.Label }

func (r *Reader) Run(ctx context.Context, out chan<- pipeline.Line) error {
	return scanLines(ctx, r.R, r.Label, out)
}
