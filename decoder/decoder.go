// Package decoder turns AIS !AIVDM/!AIVDO sentences into typed records.
//
// A Decoder owns the fragment table for multi-sentence messages and must not
// be shared between goroutines without external locking.
package decoder

import (
	"time"

	"go.uber.org/zap"
)

// Frame is a decoded message with the sentences that carried it.
type Frame struct {
	Message   Message
	Sentences []string
	Tag       string
	Channel   string
}

type Decoder struct {
	assembler *FragmentAssembler
}

type Option func(*options)

type options struct {
	log *zap.Logger
	now func() time.Time
}

// WithLogger sets the logger used for fragment tracing at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces time.Now for fragment ageing.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func New(opts ...Option) *Decoder {
	o := options{log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder{assembler: NewFragmentAssembler(o.log, o.now)}
}

// Decode parses one line. It returns (nil, nil) when the line is a fragment
// of a message that is not complete yet.
func (d *Decoder) Decode(line string) (Message, error) {
	fr, err := d.DecodeFrame(line)
	if err != nil || fr == nil {
		return nil, err
	}
	return fr.Message, nil
}

// DecodeFrame is Decode but also returns the raw sentences, the tag and
// the channel of the completed message.
func (d *Decoder) DecodeFrame(line string) (*Frame, error) {
	s, err := ParseSentence(line)
	if err != nil {
		return nil, err
	}
	asm, err := d.assembler.Add(s)
	if err != nil || asm == nil {
		return nil, err
	}
	msg, err := DecodeBits(asm.Bits)
	if err != nil {
		return nil, err
	}
	fr := &Frame{
		Message:   msg,
		Sentences: make([]string, len(asm.Sentences)),
		Tag:       s.Tag,
		Channel:   s.Channel,
	}
	for i, p := range asm.Sentences {
		fr.Sentences[i] = p.Raw
	}
	return fr, nil
}

// Expire drops incomplete multi-part messages older than maxAge and returns
// the number dropped.
func (d *Decoder) Expire(maxAge time.Duration) int {
	return d.assembler.Expire(maxAge)
}

// Pending returns the number of incomplete multi-part messages.
func (d *Decoder) Pending() int { return d.assembler.Pending() }

// Decode decodes a single self-contained sentence with a throwaway Decoder.
func Decode(line string) (Message, error) {
	return New().Decode(line)
}
