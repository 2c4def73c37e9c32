package decoder

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxFragments is the largest fragment count a sentence may declare. The
// count field is a single digit.
const MaxFragments = 9

// Sentence is one parsed !AIVDM or !AIVDO line.
type Sentence struct {
	Raw           string
	Tag           string // talker plus formatter, e.g. "AIVDM"
	FragmentCount int
	FragmentIndex int
	SequenceID    int
	HasSequenceID bool
	Channel       string
	Payload       string
	FillBits      int
}

// Talker returns the two-letter talker id, usually "AI".
func (s *Sentence) Talker() string { return s.Tag[:2] }

// Own reports whether the sentence describes the receiving station (VDO).
func (s *Sentence) Own() bool { return strings.HasSuffix(s.Tag, "VDO") }

// Checksum returns the NMEA checksum of body, the text between the leading
// '!' or '$' and the '*', as two uppercase hex digits.
func Checksum(body string) string {
	var sum byte
	for i := 0; i < len(body); i++ {
		sum ^= body[i]
	}
	return fmt.Sprintf("%02X", sum)
}

// ParseSentence validates the framing and checksum of line and splits it
// into its fields. Surrounding whitespace, including CR/LF, is ignored.
func ParseSentence(line string) (*Sentence, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, malformed(line, "empty sentence")
	}
	if line[0] != '!' && line[0] != '$' {
		return nil, malformed(line, "sentence must start with '!' or '$'")
	}
	star := strings.LastIndexByte(line, '*')
	if star < 0 {
		return nil, malformed(line, "missing checksum")
	}
	given := line[star+1:]
	if len(given) != 2 {
		return nil, malformed(line, "checksum must be two hex digits")
	}
	if _, err := strconv.ParseUint(given, 16, 8); err != nil {
		return nil, malformed(line, "checksum is not hex")
	}
	body := line[1:star]
	if want := Checksum(body); want != strings.ToUpper(given) {
		return nil, &ChecksumError{Expected: want, Actual: strings.ToUpper(given)}
	}

	fields := strings.Split(body, ",")
	if len(fields) != 7 {
		return nil, malformed(line, fmt.Sprintf("expected 7 fields, got %d", len(fields)))
	}
	tag := fields[0]
	if len(tag) != 5 || !(strings.HasSuffix(tag, "VDM") || strings.HasSuffix(tag, "VDO")) {
		return nil, malformed(line, "not a VDM/VDO sentence: "+tag)
	}

	s := &Sentence{Raw: line, Tag: tag, Channel: fields[4], Payload: fields[5]}
	var err error
	if s.FragmentCount, err = strconv.Atoi(fields[1]); err != nil || s.FragmentCount < 1 || s.FragmentCount > MaxFragments {
		return nil, malformed(line, "invalid fragment count "+strconv.Quote(fields[1]))
	}
	if s.FragmentIndex, err = strconv.Atoi(fields[2]); err != nil || s.FragmentIndex < 1 {
		return nil, malformed(line, "invalid fragment index "+strconv.Quote(fields[2]))
	}
	if s.FragmentIndex > s.FragmentCount {
		return nil, malformed(line, fmt.Sprintf("fragment index %d exceeds count %d", s.FragmentIndex, s.FragmentCount))
	}
	if fields[3] != "" {
		if s.SequenceID, err = strconv.Atoi(fields[3]); err != nil || s.SequenceID < 0 {
			return nil, malformed(line, "invalid sequence id "+strconv.Quote(fields[3]))
		}
		s.HasSequenceID = true
	}
	if s.FillBits, err = strconv.Atoi(fields[6]); err != nil || s.FillBits < 0 || s.FillBits > 5 {
		return nil, malformed(line, "invalid fill bits "+strconv.Quote(fields[6]))
	}
	return s, nil
}
