package decoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func mustParse(t *testing.T, line string) *Sentence {
	t.Helper()
	s, err := ParseSentence(line)
	require.NoError(t, err)
	return s
}

func TestAssemblerLogsSupersede(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	a := NewFragmentAssembler(zap.New(core), nil)

	first := mustParse(t, "!AIVDM,3,1,7,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn,0*7F")
	asm, err := a.Add(first)
	require.NoError(t, err)
	assert.Nil(t, asm)

	asm, err = a.Add(first)
	require.NoError(t, err)
	assert.Nil(t, asm)
	assert.Equal(t, 1, a.Pending())

	superseded := logs.FilterMessage("superseding incomplete assembly").All()
	require.Len(t, superseded, 1)
	assert.Equal(t, int64(7), superseded[0].ContextMap()["sequence_id"])
}

func TestAssemblerJoinsBits(t *testing.T) {
	a := NewFragmentAssembler(nil, nil)
	_, err := a.Add(mustParse(t, "!AIVDM,2,1,1,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1C"))
	require.NoError(t, err)
	asm, err := a.Add(mustParse(t, "!AIVDM,2,2,1,A,88888888880,2*25"))
	require.NoError(t, err)
	require.NotNil(t, asm)
	// 60*6 + 11*6 - 2 fill bits
	assert.Len(t, asm.Bits, 424)
	assert.Len(t, asm.Sentences, 2)
}

func TestAssemblerArmorErrorKeepsPending(t *testing.T) {
	a := NewFragmentAssembler(nil, nil)
	_, err := a.Add(mustParse(t, "!AIVDM,2,1,1,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1C"))
	require.NoError(t, err)

	bad := &Sentence{Raw: "bad", Tag: "AIVDM", FragmentCount: 2, FragmentIndex: 2,
		SequenceID: 3, HasSequenceID: true, Payload: "88x"}
	_, err = a.Add(bad)
	var m *MalformedSentenceError
	require.ErrorAs(t, err, &m)
	assert.Equal(t, "bad", m.Sentence)
	assert.Equal(t, 1, a.Pending())
}
