package pipeline

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/kintel/aisdecoder/decoder"
)

// Line is one raw sentence as received from a source.
type Line struct {
	Text     string
	Source   string
	Received time.Time
}

// Record is a decoded message as handed to sinks.
type Record struct {
	ID          string          `json:"id"`
	ReceivedAt  time.Time       `json:"timestamp"`
	Source      string          `json:"source,omitempty"`
	Tag         string          `json:"tag"`
	Channel     string          `json:"channel,omitempty"`
	MessageType uint8           `json:"message_type"`
	MMSI        uint32          `json:"mmsi"`
	Sentences   []string        `json:"raw_sentences"`
	Message     decoder.Message `json:"message"`
}

func NewRecord(fr *decoder.Frame, line Line) *Record {
	h := fr.Message.GetHeader()
	return &Record{
		ID:          uuid.NewString(),
		ReceivedAt:  line.Received,
		Source:      line.Source,
		Tag:         fr.Tag,
		Channel:     fr.Channel,
		MessageType: h.MessageID,
		MMSI:        h.MMSI,
		Sentences:   fr.Sentences,
		Message:     fr.Message,
	}
}

// Fields returns the decoded message as a flat JSON object.
func (r *Record) Fields() (map[string]interface{}, error) {
	b, err := json.Marshal(r.Message)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
