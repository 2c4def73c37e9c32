package decoder

import (
	"encoding/json"
	"testing"

	ais "github.com/BertoldVdb/go-ais"
	"github.com/BertoldVdb/go-ais/aisnmea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCrossCheckGoAIS decodes every positive vector with go-ais as well and
// compares the fields both libraries agree on.
func TestCrossCheckGoAIS(t *testing.T) {
	codec := ais.CodecNew(false, false)
	codec.DropSpace = true
	nmeaCodec := aisnmea.NMEACodecNew(codec)

	for _, v := range loadVectors(t) {
		if v.Error != "" {
			continue
		}
		t.Run(v.Name, func(t *testing.T) {
			d := New()
			var ours Message
			var theirs *aisnmea.VdmPacket
			for _, s := range v.Sentences {
				m, err := d.Decode(s)
				require.NoError(t, err)
				ours = m
				p, err := nmeaCodec.ParseSentence(s)
				if err != nil {
					t.Skipf("go-ais rejects %q: %v", s, err)
				}
				theirs = p
			}
			require.NotNil(t, ours)
			if theirs == nil || theirs.Packet == nil {
				t.Skip("go-ais does not decode this message")
			}

			h := theirs.Packet.GetHeader()
			assert.Equal(t, h.MessageID, ours.GetHeader().MessageID)
			assert.Equal(t, h.UserID, ours.GetHeader().MMSI)

			b, err := json.Marshal(theirs.Packet)
			require.NoError(t, err)
			var fields map[string]interface{}
			require.NoError(t, json.Unmarshal(b, &fields))

			switch ours.GetHeader().MessageID {
			case 1, 2, 3, 4, 11, 18, 19:
				got := toJSONMap(t, ours)
				assert.InDelta(t, fields["Latitude"], got["lat"], 1e-6)
				assert.InDelta(t, fields["Longitude"], got["lon"], 1e-6)
			}
		})
	}
}
