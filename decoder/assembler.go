package decoder

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Assembled is a complete bitstream together with the sentences it was
// built from.
type Assembled struct {
	Bits      Bits
	Sentences []*Sentence
}

type fragmentEntry struct {
	total     int
	parts     []*Sentence // slot 0 == fragment #1, etc
	bits      []Bits
	received  int
	firstSeen time.Time
	ts        time.Time // last-touched timestamp
}

// FragmentAssembler joins multi-sentence messages keyed by sequence id.
// It is not safe for concurrent use.
type FragmentAssembler struct {
	pending map[int]*fragmentEntry
	now     func() time.Time
	log     *zap.Logger
}

func NewFragmentAssembler(log *zap.Logger, now func() time.Time) *FragmentAssembler {
	if log == nil {
		log = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &FragmentAssembler{
		pending: make(map[int]*fragmentEntry),
		now:     now,
		log:     log,
	}
}

// Pending returns the number of incomplete assemblies.
func (a *FragmentAssembler) Pending() int { return len(a.pending) }

// Add feeds one sentence. It returns nil with no error while a multi-part
// message is still incomplete. Fill bits are only honored on the final
// fragment.
func (a *FragmentAssembler) Add(s *Sentence) (*Assembled, error) {
	bits, err := Unarmor(s.Payload)
	if err != nil {
		if m, ok := err.(*MalformedSentenceError); ok {
			m.Sentence = s.Raw
		}
		return nil, err
	}

	if s.FragmentCount == 1 || !s.HasSequenceID {
		if bits, err = bits.trimFill(s.FillBits); err != nil {
			return nil, a.reject(s, err)
		}
		return &Assembled{Bits: bits, Sentences: []*Sentence{s}}, nil
	}

	key := s.SequenceID
	e, ok := a.pending[key]
	if s.FragmentIndex == 1 {
		if ok {
			a.log.Debug("superseding incomplete assembly",
				zap.Int("sequence_id", key),
				zap.Int("received", e.received),
				zap.Int("total", e.total))
		}
		now := a.now()
		e = &fragmentEntry{
			total:     s.FragmentCount,
			firstSeen: now,
		}
		a.pending[key] = e
		a.log.Debug("started assembling",
			zap.Int("sequence_id", key),
			zap.Int("total", s.FragmentCount))
	} else {
		if !ok {
			return nil, a.reject(s, ErrFragmentOutOfOrder)
		}
		if e.total != s.FragmentCount {
			delete(a.pending, key)
			return nil, a.reject(s, ErrFragmentCountMismatch)
		}
		if s.FragmentIndex != e.received+1 {
			delete(a.pending, key)
			return nil, a.reject(s, ErrFragmentOutOfOrder)
		}
	}

	e.parts = append(e.parts, s)
	e.bits = append(e.bits, bits)
	e.received++
	e.ts = a.now()

	if e.received < e.total {
		return nil, nil
	}
	delete(a.pending, key)

	last := len(e.bits) - 1
	if e.bits[last], err = e.bits[last].trimFill(s.FillBits); err != nil {
		return nil, a.reject(s, err)
	}
	n := 0
	for _, b := range e.bits {
		n += len(b)
	}
	joined := make(Bits, 0, n)
	for _, b := range e.bits {
		joined = append(joined, b...)
	}
	a.log.Debug("assembled",
		zap.Int("sequence_id", key),
		zap.Int("total", e.total),
		zap.Duration("took", e.ts.Sub(e.firstSeen)))
	return &Assembled{Bits: joined, Sentences: e.parts}, nil
}

// Expire drops incomplete assemblies not touched for longer than maxAge and
// returns how many were dropped.
func (a *FragmentAssembler) Expire(maxAge time.Duration) int {
	now := a.now()
	dropped := 0
	for k, e := range a.pending {
		if now.Sub(e.ts) > maxAge {
			delete(a.pending, k)
			dropped++
			a.log.Debug("expired incomplete assembly",
				zap.Int("sequence_id", k),
				zap.Int("received", e.received),
				zap.Int("total", e.total))
		}
	}
	return dropped
}

func (a *FragmentAssembler) reject(s *Sentence, err error) error {
	var reason string
	switch err {
	case ErrFragmentOutOfOrder:
		reason = fmt.Sprintf("fragment %d/%d for sequence %d", s.FragmentIndex, s.FragmentCount, s.SequenceID)
	case ErrFragmentCountMismatch:
		reason = fmt.Sprintf("fragment %d claims %d parts for sequence %d", s.FragmentIndex, s.FragmentCount, s.SequenceID)
	default:
		if m, ok := err.(*MalformedSentenceError); ok {
			m.Sentence = s.Raw
			return m
		}
		reason = "fragment rejected"
	}
	return &MalformedSentenceError{Sentence: s.Raw, Reason: reason, Err: err}
}
