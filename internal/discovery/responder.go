// Package discovery implements LAN peer discovery: a UDP responder that
// answers a fixed token with an application tag, and a one-shot broadcast
// client that collects those answers. It is deliberately best-effort — a
// single broadcast with no retry — since the sync and compare protocols
// remain usable with a manually entered address.
package discovery

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Token is the discovery request payload. It carries no meaning beyond
// having to match on both ends of a pairing.
const Token = "DISCOVER_AL_SWAIFE"

// DefaultAppTag prefixes discovery replies: "<tag>:<hostname>".
const DefaultAppTag = "ALSWAIFE"

// pollInterval is the read deadline on the responder socket, chosen so a
// Stop call is observed within roughly one second.
const pollInterval = time.Second

// ResponderConfig configures a discovery responder.
type ResponderConfig struct {
	Port   int
	Token  string
	AppTag string
}

// Responder answers discovery datagrams on a UDP port. One Responder is
// owned per server instance; construct with NewResponder, then Start/Stop.
type Responder struct {
	cfg     ResponderConfig
	conn    *net.UDPConn
	running atomic.Bool
	wg      sync.WaitGroup
}

// NewResponder creates a responder. Zero-value config fields fall back to
// the package defaults (the port must be set by the caller; 0 binds an
// ephemeral port, useful in tests).
func NewResponder(cfg ResponderConfig) *Responder {
	if cfg.Token == "" {
		cfg.Token = Token
	}
	if cfg.AppTag == "" {
		cfg.AppTag = DefaultAppTag
	}
	return &Responder{cfg: cfg}
}

// Start binds the UDP socket on all interfaces and starts the receive
// loop on its own goroutine.
func (r *Responder) Start() error {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{Port: r.cfg.Port})
	if err != nil {
		return fmt.Errorf("bind discovery port %d: %w", r.cfg.Port, err)
	}
	r.conn = conn
	r.running.Store(true)

	r.wg.Add(1)
	go r.loop()

	slog.Info("discovery responder started", "addr", conn.LocalAddr())
	return nil
}

// Stop clears the running flag and closes the socket. Safe to call more
// than once; blocks until the receive loop exits.
func (r *Responder) Stop() {
	if !r.running.Swap(false) {
		return
	}
	r.conn.Close()
	r.wg.Wait()
	slog.Info("discovery responder stopped")
}

// Addr returns the bound socket address, useful when Port was 0.
func (r *Responder) Addr() *net.UDPAddr {
	return r.conn.LocalAddr().(*net.UDPAddr)
}

func (r *Responder) loop() {
	defer r.wg.Done()

	reply := replyPayload(r.cfg.AppTag)
	buf := make([]byte, 256)

	for r.running.Load() {
		r.conn.SetReadDeadline(time.Now().Add(pollInterval))
		n, sender, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if r.running.Load() {
				slog.Warn("discovery read failed", "error", err)
			}
			return
		}

		if string(buf[:n]) != r.cfg.Token {
			continue // not ours
		}
		if _, err := r.conn.WriteToUDP(reply, sender); err != nil {
			slog.Warn("discovery reply failed", "peer", sender, "error", err)
		}
	}
}

// replyPayload formats the discovery reply "<tag>:<hostname>".
func replyPayload(tag string) []byte {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	return []byte(tag + ":" + hostname)
}

// parseReply extracts the hostname from a "<tag>:<hostname>" reply,
// reporting whether the payload carries the expected tag.
func parseReply(payload []byte, tag string) (string, bool) {
	s := string(payload)
	if !strings.HasPrefix(s, tag+":") {
		return "", false
	}
	return strings.TrimPrefix(s, tag+":"), true
}
