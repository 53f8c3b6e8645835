package discovery

import (
	"fmt"
	"log/slog"
	"net"
	"sort"
	"time"
)

// DefaultTimeout is the reply-collection window for a discovery round.
const DefaultTimeout = 2 * time.Second

// Peer is one responding installation found on the LAN.
type Peer struct {
	IP       string
	Hostname string
}

// Discover broadcasts the token once and collects replies until timeout
// elapses, excluding this host's own addresses. Lossy by design: a missed
// peer can still be reached by entering its address manually.
func Discover(cfg ResponderConfig, timeout time.Duration) ([]Peer, error) {
	if cfg.Token == "" {
		cfg.Token = Token
	}
	if cfg.AppTag == "" {
		cfg.AppTag = DefaultAppTag
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("open discovery socket: %w", err)
	}
	defer conn.Close()

	rc, err := conn.SyscallConn()
	if err != nil {
		return nil, fmt.Errorf("discovery socket control: %w", err)
	}
	if err := enableBroadcast(rc); err != nil {
		return nil, fmt.Errorf("enable broadcast: %w", err)
	}

	dst := &net.UDPAddr{IP: net.IPv4bcast, Port: cfg.Port}
	if _, err := conn.WriteToUDP([]byte(cfg.Token), dst); err != nil {
		return nil, fmt.Errorf("broadcast discovery token: %w", err)
	}

	return collectReplies(conn, cfg.AppTag, timeout, localAddrs())
}

// collectReplies reads tagged replies from conn until timeout, skipping
// the caller's own addresses and deduplicating by IP.
func collectReplies(conn *net.UDPConn, tag string, timeout time.Duration, self map[string]bool) ([]Peer, error) {
	conn.SetReadDeadline(time.Now().Add(timeout))

	seen := map[string]bool{}
	var peers []Peer
	buf := make([]byte, 256)

	for {
		n, sender, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				break // window closed; whatever we heard is the answer
			}
			return peers, fmt.Errorf("read discovery reply: %w", err)
		}

		hostname, ok := parseReply(buf[:n], tag)
		if !ok {
			slog.Debug("ignoring unrecognized discovery reply", "peer", sender)
			continue
		}

		ip := sender.IP.String()
		if self[ip] || seen[ip] {
			continue
		}
		seen[ip] = true
		peers = append(peers, Peer{IP: ip, Hostname: hostname})
	}

	sort.Slice(peers, func(i, j int) bool { return peers[i].IP < peers[j].IP })
	return peers, nil
}

// localAddrs returns the set of this host's interface addresses.
func localAddrs() map[string]bool {
	self := map[string]bool{}
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return self
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok {
			self[ipNet.IP.String()] = true
		}
	}
	return self
}

// LocalIP returns the address of the interface that would route to the
// internet, falling back to loopback. Used only for display.
func LocalIP() string {
	conn, err := net.Dial("udp4", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String()
}
