package source

import (
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/kintel/aisdecoder/pipeline"
)

const input = "!AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0*5C\r\n" +
	"noise\r\n" +
	"\r\n" +
	"$GPGGA,ignored-by-decoder*00\r\n" +
	"  !AIVDM,2,2,1,A,88888888880,2*25  \r\n"

func collect(ch <-chan pipeline.Line) []pipeline.Line {
	var out []pipeline.Line
	for l := range ch {
		out = append(out, l)
	}
	return out
}

func TestReader(t *testing.T) {
	out := make(chan pipeline.Line, 10)
	r := &Reader{Label: "file", R: strings.NewReader(input)}
	require.NoError(t, r.Run(context.Background(), out))
	close(out)

	lines := collect(out)
	require.Len(t, lines, 3)
	assert.Equal(t, "!AIVDM,1,1,,B,177KQJ5000G?tO`K>RA1wUbN0TKH,0*5C", lines[0].Text)
	assert.Equal(t, "!AIVDM,2,2,1,A,88888888880,2*25", lines[2].Text)
	assert.Equal(t, "file", lines[0].Source)
	assert.False(t, lines[0].Received.IsZero())
}

func TestReaderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := &Reader{Label: "file", R: strings.NewReader(input)}
	assert.NoError(t, r.Run(ctx, make(chan pipeline.Line)))
}

type fakePort struct {
	io.Reader
	mu     sync.Mutex
	closed bool
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func TestSerial(t *testing.T) {
	port := &fakePort{Reader: strings.NewReader(input)}
	s := NewSerial("/dev/ttyUSB0", 38400, zap.NewNop())
	var gotMode *serial.Mode
	s.open = func(name string, mode *serial.Mode) (io.ReadCloser, error) {
		assert.Equal(t, "/dev/ttyUSB0", name)
		gotMode = mode
		return port, nil
	}

	out := make(chan pipeline.Line, 10)
	require.NoError(t, s.Run(context.Background(), out))
	close(out)

	assert.Equal(t, 38400, gotMode.BaudRate)
	lines := collect(out)
	assert.Len(t, lines, 3)
	assert.Equal(t, "serial", lines[0].Source)
	assert.Eventually(t, func() bool {
		port.mu.Lock()
		defer port.mu.Unlock()
		return port.closed
	}, time.Second, 10*time.Millisecond)
}

func TestSerialOpenError(t *testing.T) {
	s := NewSerial("/dev/none", 4800, zap.NewNop())
	s.open = func(string, *serial.Mode) (io.ReadCloser, error) {
		return nil, io.ErrUnexpectedEOF
	}
	err := s.Run(context.Background(), make(chan pipeline.Line))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/dev/none")
}

func TestUDPServe(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	u := NewUDP("", 0, zap.NewNop())
	out := make(chan pipeline.Line, 10)
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- u.Serve(ctx, conn, out) }()

	client, err := net.Dial("udp", conn.LocalAddr().String())
	require.NoError(t, err)
	defer client.Close()
	_, err = client.Write([]byte(input))
	require.NoError(t, err)

	var lines []pipeline.Line
	for len(lines) < 3 {
		select {
		case l := <-out:
			lines = append(lines, l)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for UDP lines")
		}
	}
	assert.Equal(t, "udp:127.0.0.1", lines[0].Source)
	assert.Equal(t, "!AIVDM,2,2,1,A,88888888880,2*25", lines[2].Text)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not stop")
	}
}

func TestUDPRateLimit(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := NewUDP("", 3, zap.NewNop())
	for i := 0; i < 3; i++ {
		assert.True(t, u.allow("10.0.0.1", now))
	}
	assert.False(t, u.allow("10.0.0.1", now))
	assert.True(t, u.allow("10.0.0.2", now))
	assert.True(t, u.allow("10.0.0.1", now.Add(20*time.Second)))

	unlimited := NewUDP("", 0, zap.NewNop())
	for i := 0; i < 100; i++ {
		assert.True(t, unlimited.allow("10.0.0.1", now))
	}
	assert.Empty(t, unlimited.limiters)
}

func TestUDPPruneIdleLimiters(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	u := NewUDP("", 3, zap.NewNop())
	u.allow("10.0.0.1", now)
	u.allow("10.0.0.2", now.Add(4*time.Minute))

	assert.Zero(t, u.prune(now.Add(limiterIdle)))
	assert.Equal(t, 1, u.prune(now.Add(limiterIdle+time.Second)))
	assert.Len(t, u.limiters, 1)
	assert.Contains(t, u.limiters, "10.0.0.2")
}
