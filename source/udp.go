package source

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kintel/aisdecoder/pipeline"
)

// limiterIdle is how long a sender's limiter survives without traffic.
const limiterIdle = 5 * time.Minute

type peer struct {
	lim  *rate.Limiter
	seen time.Time
}

// UDP receives sentences from feeders. Each datagram may carry several
// lines. Senders above RatePerMinute are throttled per IP.
type UDP struct {
	Addr          string
	RatePerMinute int
	Log           *zap.Logger

	mu       sync.Mutex
	limiters map[string]*peer
}

func NewUDP(addr string, ratePerMinute int, log *zap.Logger) *UDP {
	return &UDP{Addr: addr, RatePerMinute: ratePerMinute, Log: log}
}

func (u *UDP) Name() string { return "udp" }

func (u *UDP) Run(ctx context.Context, out chan<- pipeline.Line) error {
	conn, err := net.ListenPacket("udp", u.Addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", u.Addr)
	}
	u.Log.Info("listening for UDP", zap.String("addr", conn.LocalAddr().String()))
	return u.Serve(ctx, conn, out)
}

// Serve reads datagrams from conn until ctx is done. conn is closed on
// return.
func (u *UDP) Serve(ctx context.Context, conn net.PacketConn, out chan<- pipeline.Line) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer conn.Close()
		ticker := time.NewTicker(limiterIdle)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case now := <-ticker.C:
				if n := u.prune(now); n > 0 {
					u.Log.Debug("pruned idle rate limiters", zap.Int("count", n))
				}
			}
		}
	}()

	buf := make([]byte, 4096)
	for {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			u.Log.Warn("error reading UDP message", zap.Error(err))
			continue
		}
		ip := addr.String()
		if h, _, err := net.SplitHostPort(ip); err == nil {
			ip = h
		}
		if !u.allow(ip, time.Now()) {
			u.Log.Debug("rate limited", zap.String("source", ip))
			continue
		}
		name := "udp:" + ip
		for _, line := range strings.Split(string(buf[:n]), "\n") {
			line = strings.TrimSpace(line)
			if !isSentence(line) {
				continue
			}
			if !emit(ctx, out, line, name) {
				return nil
			}
		}
	}
}

// allow returns true if ip is under RatePerMinute. A zero rate disables
// limiting.
func (u *UDP) allow(ip string, now time.Time) bool {
	if u.RatePerMinute <= 0 {
		return true
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.limiters == nil {
		u.limiters = make(map[string]*peer)
	}
	p, ok := u.limiters[ip]
	if !ok {
		p = &peer{lim: rate.NewLimiter(rate.Every(time.Minute/time.Duration(u.RatePerMinute)), u.RatePerMinute)}
		u.limiters[ip] = p
	}
	p.seen = now
	return p.lim.AllowN(now, 1)
}

// prune drops limiters idle for longer than limiterIdle.
func (u *UDP) prune(now time.Time) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for ip, p := range u.limiters {
		if now.Sub(p.seen) > limiterIdle {
			delete(u.limiters, ip)
			n++
		}
	}
	return n
}
