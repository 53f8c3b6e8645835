package syncnet

import (
	"bytes"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/alswaife/lansync/internal/archive"
	"github.com/alswaife/lansync/internal/manifest"
)

// CompareFunc receives the classified differences against a peer.
type CompareFunc func(entries []manifest.DiffEntry, peerIP string)

// CompareClient asks a peer for its manifest and diffs it against the
// local tree, or pushes an explicit set of files to the peer.
type CompareClient struct {
	cfg       ClientConfig
	onCompare CompareFunc
}

// NewCompareClient creates a compare client. onCompare receives the diff
// from GetRemoteFilesInfo; transfer results arrive via cfg.Hooks.
func NewCompareClient(cfg ClientConfig, onCompare CompareFunc) *CompareClient {
	cfg.applyDefaults()
	return &CompareClient{cfg: cfg, onCompare: onCompare}
}

// GetRemoteFilesInfo fetches the peer's manifest, scans the local root,
// and delivers the diff through the compare callback. Fully asynchronous.
func (c *CompareClient) GetRemoteFilesInfo(targetIP string) {
	go c.getRemoteFilesInfo(targetIP)
}

func (c *CompareClient) getRemoteFilesInfo(targetIP string) {
	h := c.cfg.Hooks

	addr := net.JoinHostPort(targetIP, strconv.Itoa(c.cfg.Port))
	nc, err := net.DialTimeout("tcp", addr, c.cfg.ConnectTimeout)
	if err != nil {
		h.error(dialFailureMessage(targetIP, err))
		return
	}
	defer nc.Close()
	conn := newIdleConn(nc, c.cfg.IdleTimeout)

	if err := WriteTag(conn, TagFilesInfo); err != nil {
		h.error(transferFailureMessage(err))
		return
	}

	length, err := ReadHeader(conn)
	if err != nil {
		h.error(fmt.Sprintf("bad manifest header from %s: %v", targetIP, err))
		return
	}

	var buf bytes.Buffer
	if err := copyN(&buf, conn, length, nil); err != nil {
		h.error(transferFailureMessage(err))
		return
	}
	c.cfg.Stats.AddBytesReceived(length)

	remote, err := manifest.Decode(buf.Bytes())
	if err != nil {
		h.error(fmt.Sprintf("malformed manifest from %s: %v", targetIP, err))
		return
	}

	local, err := manifest.Scan(c.cfg.Root)
	if err != nil {
		h.error(fmt.Sprintf("failed to scan local files: %v", err))
		return
	}

	entries := manifest.Diff(local, remote)
	slog.Info("compare: diff computed", "peer", targetIP,
		"local", len(local), "remote", len(remote), "differences", len(entries))
	if c.onCompare != nil {
		c.onCompare(entries, targetIP)
	}
}

// SendSelectedFiles archives exactly the given root-relative paths and
// pushes them to the peer's compare port. Paths missing on disk are
// silently omitted. Fully asynchronous.
func (c *CompareClient) SendSelectedFiles(targetIP string, paths []string) {
	go c.sendSelectedFiles(targetIP, paths)
}

func (c *CompareClient) sendSelectedFiles(targetIP string, paths []string) {
	h := c.cfg.Hooks

	archivePath, files, err := archive.BuildSelective(c.cfg.Root, paths, func(p float64) {
		h.progress(p * 0.3)
	})
	if err != nil {
		slog.Error("compare: archive build failed", "root", c.cfg.Root, "error", err)
		c.cfg.Stats.AddTransferFailed()
		h.error(fmt.Sprintf("%s: %v", msgBuildFailed, err))
		return
	}
	defer os.Remove(archivePath)
	c.cfg.Stats.AddFilesArchived(int64(files))

	ok, message := pushArchive(c.cfg, targetIP, TagReceiveFiles, archivePath, 30)
	if !ok {
		c.cfg.Stats.AddTransferFailed()
		h.error(message)
		return
	}
	c.cfg.Stats.AddTransferOK()
	h.complete(true, fmt.Sprintf("sent %d file(s) to %s", files, targetIP))
}
