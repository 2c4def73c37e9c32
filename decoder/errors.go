package decoder

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Sentinels wrapped by MalformedSentenceError when fragments disagree with
// the pending assembly for their sequence id.
var (
	ErrFragmentOutOfOrder    = errors.New("fragment out of order")
	ErrFragmentCountMismatch = errors.New("fragment count mismatch")
)

// MalformedSentenceError reports a sentence that does not follow the
// !AIVDM/!AIVDO grammar, carries invalid armor, or disagrees with the
// fragments already received for its sequence id.
type MalformedSentenceError struct {
	Sentence string
	Reason   string
	Err      error
}

func (e *MalformedSentenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed sentence: %s: %v", e.Reason, e.Err)
	}
	return "malformed sentence: " + e.Reason
}

func (e *MalformedSentenceError) Unwrap() error { return e.Err }

// ChecksumError carries the checksum computed over the sentence body
// (Expected) and the one transmitted after '*' (Actual).
type ChecksumError struct {
	Expected string
	Actual   string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected %s, got %s", e.Expected, e.Actual)
}

// TruncatedMessageError is returned when a field read runs past the end of
// the assembled bitstream.
type TruncatedMessageError struct {
	Needed    int
	Remaining int
}

func (e *TruncatedMessageError) Error() string {
	return fmt.Sprintf("truncated message: need %d bits, %d remaining", e.Needed, e.Remaining)
}

type UnsupportedMessageTypeError struct {
	Type uint8
}

func (e *UnsupportedMessageTypeError) Error() string {
	return fmt.Sprintf("unsupported message type %d", e.Type)
}

// NotImplementedError marks a recognized message type whose decoding is
// deliberately left out.
type NotImplementedError struct {
	Type uint8
	Name string
}

func (e *NotImplementedError) Error() string {
	return "not implemented: " + e.Name
}

// Error kinds returned by ErrorKind.
const (
	KindMalformed      = "malformed"
	KindChecksum       = "checksum"
	KindTruncated      = "truncated"
	KindUnsupported    = "unsupported"
	KindNotImplemented = "not_implemented"
	KindOther          = "other"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	var (
		malformed *MalformedSentenceError
		checksum  *ChecksumError
		truncated *TruncatedMessageError
		unsup     *UnsupportedMessageTypeError
		notImpl   *NotImplementedError
	)
	switch {
	case errors.As(err, &checksum):
		return KindChecksum
	case errors.As(err, &malformed):
		return KindMalformed
	case errors.As(err, &truncated):
		return KindTruncated
	case errors.As(err, &unsup):
		return KindUnsupported
	case errors.As(err, &notImpl):
		return KindNotImplemented
	}
	return KindOther
}

func malformed(sentence, reason string) error {
	return &MalformedSentenceError{Sentence: sentence, Reason: reason}
}
