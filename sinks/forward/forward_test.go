package forward

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kintel/aisdecoder/pipeline"
)

func TestPublish(t *testing.T) {
	ln, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	f, err := Dial(ln.LocalAddr().String())
	require.NoError(t, err)
	defer f.Close()

	rec := &pipeline.Record{Sentences: []string{
		"!AIVDM,2,1,1,A,55?MbV02;H;s<HtKR20EHE:0@T4@Dn2222222216L961O5Gf0NSQEp6ClRp8,0*1C",
		"!AIVDM,2,2,1,A,88888888880,2*25",
	}}
	require.NoError(t, f.Publish(context.Background(), rec))

	buf := make([]byte, 1024)
	require.NoError(t, ln.SetReadDeadline(time.Now().Add(2*time.Second)))
	n, _, err := ln.ReadFrom(buf)
	require.NoError(t, err)
	assert.Equal(t, rec.Sentences[0]+"\r\n"+rec.Sentences[1]+"\r\n", string(buf[:n]))
}
