package decoder

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type vector struct {
	Name      string                 `yaml:"name"`
	Sentences []string               `yaml:"sentences"`
	Expect    map[string]interface{} `yaml:"expect"`
	Error     string                 `yaml:"error"`
}

func loadVectors(t *testing.T) []vector {
	t.Helper()
	data, err := os.ReadFile("testdata/vectors.yaml")
	require.NoError(t, err)
	var vs []vector
	require.NoError(t, yaml.Unmarshal(data, &vs))
	require.NotEmpty(t, vs)
	return vs
}

func toJSONMap(t *testing.T, m Message) map[string]interface{} {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestVectors(t *testing.T) {
	for _, v := range loadVectors(t) {
		t.Run(v.Name, func(t *testing.T) {
			d := New()
			last := len(v.Sentences) - 1
			for _, s := range v.Sentences[:last] {
				msg, err := d.Decode(s)
				require.NoError(t, err)
				require.Nil(t, msg)
			}
			msg, err := d.Decode(v.Sentences[last])
			if v.Error != "" {
				require.Error(t, err)
				assert.Equal(t, v.Error, ErrorKind(err), err.Error())
				assert.Nil(t, msg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, msg)
			assert.Zero(t, d.Pending())

			got := toJSONMap(t, msg)
			for key, want := range v.Expect {
				require.Contains(t, got, key)
				switch w := want.(type) {
				case int:
					assert.InDelta(t, float64(w), got[key], 1e-9, key)
				case float64:
					assert.InDelta(t, w, got[key], 1e-9, key)
				default:
					assert.Equal(t, want, got[key], key)
				}
			}
		})
	}
}

func TestDecodeTypedRecords(t *testing.T) {
	msg, err := Decode("!AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0*5C")
	require.NoError(t, err)
	pr, ok := msg.(*PositionReport)
	require.True(t, ok)
	assert.Equal(t, uint32(477553000), pr.GetHeader().MMSI)
	assert.Equal(t, uint8(1), pr.MessageID)
	assert.Equal(t, uint16(181), pr.Heading)
	assert.Equal(t, TurnRate, pr.Turn.Status)

	msg, err = Decode("!AIVDM,1,1,,B,B69>7mh0?J<:>05B0`0e;wq2PHI8,0*3D")
	require.NoError(t, err)
	cb, ok := msg.(*ClassBPositionReport)
	require.True(t, ok)
	assert.False(t, cb.Repeat)
	assert.Equal(t, uint32(99912), cb.Radio)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode("!AIVDM,1,1,,A,G02bBUP<3HluhGja`UV00000900,2*54")
	var unsup *UnsupportedMessageTypeError
	require.ErrorAs(t, err, &unsup)
	assert.Equal(t, uint8(23), unsup.Type)

	_, err = Decode("!AIVDM,1,1,,B,91b55wPVAOOTnPLQ?OFrcPP206I`,0*32")
	var notImpl *NotImplementedError
	require.ErrorAs(t, err, &notImpl)
	assert.Equal(t, uint8(9), notImpl.Type)
	assert.Equal(t, "Static Data Report", notImpl.Name)
	assert.NotErrorAs(t, err, &unsup)

	_, err = Decode("!AIVDM,1,1,,A,H42O55i18tMET00000000000000,2*6D")
	require.ErrorAs(t, err, &notImpl)
	assert.Equal(t, uint8(24), notImpl.Type)
	assert.Equal(t, "Static Data Report", notImpl.Name)
	assert.Equal(t, "not implemented: Static Data Report", err.Error())

	_, err = Decode("!AIVDO,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0*5C")
	var cs *ChecksumError
	require.ErrorAs(t, err, &cs)
	assert.Equal(t, "5E", cs.Expected)
	assert.Equal(t, "5C", cs.Actual)

	_, err = Decode("!AIVDM,1,1,,B,177KQJ5000G?,0*39")
	var trunc *TruncatedMessageError
	require.ErrorAs(t, err, &trunc)
}

func TestSentinelsPassThrough(t *testing.T) {
	msg, err := Decode("!AIVDM,1,1,,B,177KQJ0P00G??E0K;P8>4?wp2000,0*3E")
	require.NoError(t, err)
	pr := msg.(*PositionReport)
	assert.Equal(t, 360.0, pr.Course)
	assert.Equal(t, uint16(511), pr.Heading)
	assert.Equal(t, uint8(60), pr.Second)
	assert.Equal(t, TurnNotAvailable, pr.Turn.Status)
	assert.Equal(t, int8(-128), pr.Turn.Raw)
}

func TestDecodeFrameKeepsSentences(t *testing.T) {
	first := "!AIVDM,2,1,1,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1C"
	second := "!AIVDM,2,2,1,A,88888888880,2*25"

	d := New()
	fr, err := d.DecodeFrame(first + "\r\n")
	require.NoError(t, err)
	assert.Nil(t, fr)
	assert.Equal(t, 1, d.Pending())

	fr, err = d.DecodeFrame(second)
	require.NoError(t, err)
	require.NotNil(t, fr)
	assert.Equal(t, []string{first, second}, fr.Sentences)
	assert.Equal(t, "A", fr.Channel)
	assert.Equal(t, "AIVDM", fr.Tag)
	assert.Equal(t, "StaticAndVoyageRelatedData", fr.Message.GetHeader().Type)
}

func TestInterleavedSequences(t *testing.T) {
	d := New()
	seq3 := []string{
		"!AIVDM,2,1,3,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1E",
		"!AIVDM,2,2,3,A,88888888880,2*27",
	}
	seq1 := []string{
		"!AIVDM,2,1,1,B,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1F",
		"!AIVDM,2,2,1,B,88888888880,2*26",
	}

	for _, s := range []string{seq3[0], seq1[0]} {
		msg, err := d.Decode(s)
		require.NoError(t, err)
		require.Nil(t, msg)
	}
	assert.Equal(t, 2, d.Pending())

	// A single-fragment message in between does not disturb either.
	msg, err := d.Decode("!AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0*5C")
	require.NoError(t, err)
	require.NotNil(t, msg)

	msg, err = d.Decode(seq1[1])
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, uint32(351759000), msg.GetHeader().MMSI)

	msg, err = d.Decode(seq3[1])
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "EVER DIADEM", msg.(*StaticAndVoyageData).Shipname)
	assert.Zero(t, d.Pending())
}

func TestFirstFragmentSupersedesStaleEntry(t *testing.T) {
	d := New()
	three := []string{
		"!AIVDM,3,1,7,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn,0*7F",
		"!AIVDM,3,2,7,A,2222222216L961O5Gf0NSQEp6ClRp8,0*74",
		"!AIVDM,3,3,7,A,88888888880,2*23",
	}
	_, err := d.Decode(three[0])
	require.NoError(t, err)
	_, err = d.Decode(three[1])
	require.NoError(t, err)

	// Fragment 1 again: the two fragments above are discarded.
	_, err = d.Decode(three[0])
	require.NoError(t, err)
	assert.Equal(t, 1, d.Pending())

	_, err = d.Decode(three[2])
	var m *MalformedSentenceError
	require.ErrorAs(t, err, &m)
	assert.ErrorIs(t, err, ErrFragmentOutOfOrder)
	assert.Zero(t, d.Pending())

	for i, s := range three {
		msg, err := d.Decode(s)
		require.NoError(t, err)
		if i < 2 {
			assert.Nil(t, msg)
		} else {
			assert.Equal(t, "NEW YORK", msg.(*StaticAndVoyageData).Destination)
		}
	}
}

func TestFragmentErrors(t *testing.T) {
	t.Run("continuation without start", func(t *testing.T) {
		_, err := New().Decode("!AIVDM,2,2,1,A,88888888880,2*25")
		assert.ErrorIs(t, err, ErrFragmentOutOfOrder)
		assert.Equal(t, KindMalformed, ErrorKind(err))
	})
	t.Run("count mismatch", func(t *testing.T) {
		d := New()
		_, err := d.Decode("!AIVDM,3,1,7,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn,0*7F")
		require.NoError(t, err)
		_, err = d.Decode("!AIVDM,2,2,7,A,88888888880,2*23")
		assert.ErrorIs(t, err, ErrFragmentCountMismatch)
		assert.Zero(t, d.Pending())
	})
	t.Run("index beyond count", func(t *testing.T) {
		body := "AIVDM,2,3,7,A,88888888880,2"
		_, err := New().Decode("!" + body + "*" + Checksum(body))
		var m *MalformedSentenceError
		assert.ErrorAs(t, err, &m)
	})
	t.Run("oversized count", func(t *testing.T) {
		d := New()
		body := "AIVDM,999999999999,1,1,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn,0"
		_, err := d.Decode("!" + body + "*" + Checksum(body))
		var m *MalformedSentenceError
		require.ErrorAs(t, err, &m)
		assert.Zero(t, d.Pending())

		body = "AIVDM,9,1,1,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn,0"
		msg, err := d.Decode("!" + body + "*" + Checksum(body))
		require.NoError(t, err)
		assert.Nil(t, msg)
		assert.Equal(t, 1, d.Pending())
	})
}

func TestExpire(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d := New(WithClock(func() time.Time { return now }))

	_, err := d.Decode("!AIVDM,2,1,1,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1C")
	require.NoError(t, err)
	now = now.Add(5 * time.Second)
	_, err = d.Decode("!AIVDM,2,1,3,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1E")
	require.NoError(t, err)
	require.Equal(t, 2, d.Pending())

	now = now.Add(3 * time.Second)
	assert.Equal(t, 1, d.Expire(4*time.Second))
	assert.Equal(t, 1, d.Pending())

	// Sequence 3 survived and still completes.
	msg, err := d.Decode("!AIVDM,2,2,3,A,88888888880,2*27")
	require.NoError(t, err)
	assert.NotNil(t, msg)

	// Sequence 1 was evicted.
	_, err = d.Decode("!AIVDM,2,2,1,A,88888888880,2*25")
	assert.ErrorIs(t, err, ErrFragmentOutOfOrder)
}

func TestMonotonicTurn(t *testing.T) {
	lines := []string{
		"!AIVDM,1,1,,B,177KQJ0000G??E0K;P8>4?wp2000,0*5E",
		"!AIVDM,1,1,,B,177KQJ02P0G??E0K;P8>4?wp2000,0*3C",
		"!AIVDM,1,1,,B,177KQJ0500G??E0K;P8>4?wp2000,0*5B",
	}
	prev := -1.0
	for _, l := range lines {
		msg, err := Decode(l)
		require.NoError(t, err)
		deg, ok := msg.(*PositionReport).Turn.DegreesPerMinute()
		require.True(t, ok)
		assert.Greater(t, deg, prev)
		prev = deg
	}

	msg, err := Decode("!AIVDM,1,1,,B,177KQJ0s00G??E0K;P8>4?wp2000,0*1D")
	require.NoError(t, err)
	deg, ok := msg.(*PositionReport).Turn.DegreesPerMinute()
	require.True(t, ok)
	assert.InDelta(t, -prev, deg, 1e-12)
}
