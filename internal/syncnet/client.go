package syncnet

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/alswaife/lansync/internal/archive"
	"github.com/alswaife/lansync/internal/stats"
)

// ClientConfig configures a SyncClient or CompareClient.
type ClientConfig struct {
	Root           string
	Port           int
	ConnectTimeout time.Duration // default 30s
	IdleTimeout    time.Duration // default 60s
	BytesPerSec    int64         // send bandwidth limit; 0 = unlimited
	Hooks          Hooks
	Stats          *stats.Collector
}

func (c *ClientConfig) applyDefaults() {
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = DefaultIdleTimeout
	}
	if c.Stats == nil {
		c.Stats = stats.NewCollector()
	}
}

// SyncClient pushes the full local data tree to a peer's SyncServer.
type SyncClient struct {
	cfg ClientConfig
}

// NewSyncClient creates a sync client.
func NewSyncClient(cfg ClientConfig) *SyncClient {
	cfg.applyDefaults()
	return &SyncClient{cfg: cfg}
}

// SendData archives the local tree and pushes it to targetIP on a
// background goroutine. Results arrive exclusively through the hooks, so
// the caller's thread never blocks.
func (c *SyncClient) SendData(targetIP string) {
	go c.sendData(targetIP)
}

func (c *SyncClient) sendData(targetIP string) {
	h := c.cfg.Hooks

	archivePath, files, err := archive.BuildFull(c.cfg.Root, func(p float64) {
		h.progress(p * 0.3)
	})
	if err != nil {
		slog.Error("sync: archive build failed", "root", c.cfg.Root, "error", err)
		c.cfg.Stats.AddTransferFailed()
		h.error(fmt.Sprintf("%s: %v", msgBuildFailed, err))
		return
	}
	defer os.Remove(archivePath)
	c.cfg.Stats.AddFilesArchived(int64(files))

	ok, message := c.push(targetIP, archivePath, 30)
	if !ok {
		c.cfg.Stats.AddTransferFailed()
		h.error(message)
		return
	}
	c.cfg.Stats.AddTransferOK()
	h.complete(true, fmt.Sprintf("data sent to %s", targetIP))
}

// push connects to the peer and streams header+archive, scaling progress
// from base to 100. Returns ok=false with a user-visible message.
func (c *SyncClient) push(targetIP, archivePath string, base float64) (bool, string) {
	return pushArchive(c.cfg, targetIP, "", archivePath, base)
}

// pushArchive is shared by the sync client (no tag) and the compare
// client (RECEIVE_FILES tag): dial, optional tag, length header, payload,
// 2-byte status reply.
func pushArchive(cfg ClientConfig, targetIP, tag, archivePath string, base float64) (bool, string) {
	info, err := os.Stat(archivePath)
	if err != nil {
		return false, fmt.Sprintf("%s: %v", msgBuildFailed, err)
	}
	size := info.Size()

	addr := net.JoinHostPort(targetIP, strconv.Itoa(cfg.Port))
	nc, err := net.DialTimeout("tcp", addr, cfg.ConnectTimeout)
	if err != nil {
		return false, dialFailureMessage(targetIP, err)
	}
	defer nc.Close()
	conn := newIdleConn(nc, cfg.IdleTimeout)

	if tag != "" {
		if err := WriteTag(conn, tag); err != nil {
			return false, transferFailureMessage(err)
		}
	}
	if err := WriteHeader(conn, size); err != nil {
		return false, transferFailureMessage(err)
	}

	var w io.Writer = conn
	if cfg.BytesPerSec > 0 {
		w = newRateLimitedWriter(context.Background(), conn, newBWLimiter(cfg.BytesPerSec))
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return false, fmt.Sprintf("%s: %v", msgBuildFailed, err)
	}
	defer f.Close()

	span := 100 - base
	err = copyN(w, f, size, func(written int64) {
		cfg.Hooks.progress(base + float64(written)/float64(size)*span)
	})
	if err != nil {
		return false, transferFailureMessage(err)
	}
	cfg.Stats.AddBytesSent(size)

	ok, err := readReply(conn)
	if err != nil {
		return false, fmt.Sprintf("no reply from %s: %v", targetIP, err)
	}
	if !ok {
		return false, msgPeerRejected
	}
	return true, ""
}
