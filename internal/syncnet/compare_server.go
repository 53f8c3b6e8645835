package syncnet

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/alswaife/lansync/internal/archive"
	"github.com/alswaife/lansync/internal/manifest"
	"github.com/alswaife/lansync/internal/stats"
)

// CompareServer serves two operations on one port, selected by the
// request tag that opens every connection: manifest export
// (GET_FILES_INFO) and selective file import (RECEIVE_FILES). Diffing
// always happens on the asking side; this server never sees the peer's
// manifest, which keeps the protocol asymmetric and simple.
type CompareServer struct {
	cfg ServerConfig
	l   listener
}

// NewCompareServer creates a compare server. Call Start to begin listening.
func NewCompareServer(cfg ServerConfig) *CompareServer {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &CompareServer{cfg: cfg}
}

// Start binds the TCP listener.
func (s *CompareServer) Start() error {
	return s.l.start("compare", s.cfg.Port, s.handle)
}

// Stop shuts down the listener, blocking until the accept loop exits.
func (s *CompareServer) Stop() {
	s.l.stop()
}

// Port returns the bound compare port.
func (s *CompareServer) Port() int {
	return s.l.port()
}

func (s *CompareServer) handle(nc net.Conn) {
	peer := nc.RemoteAddr().String()
	conn := newIdleConn(nc, DefaultIdleTimeout)

	tag, err := ReadTag(conn)
	if err != nil {
		slog.Warn("compare: bad request tag", "peer", peer, "error", err)
		return
	}

	switch tag {
	case TagFilesInfo:
		s.sendFilesInfo(conn, peer)
	case TagReceiveFiles:
		s.receiveFiles(conn, peer)
	default:
		slog.Warn("compare: unknown request tag", "peer", peer, "tag", tag)
		writeReply(conn, false)
	}
}

// sendFilesInfo scans the local root and replies with header+manifest.
func (s *CompareServer) sendFilesInfo(conn net.Conn, peer string) {
	m, err := manifest.Scan(s.cfg.Root)
	if err != nil {
		slog.Error("compare: scan failed", "root", s.cfg.Root, "error", err)
		s.cfg.Hooks.error(fmt.Sprintf("failed to scan local files: %v", err))
		return
	}
	payload, err := manifest.Encode(m)
	if err != nil {
		s.cfg.Hooks.error(fmt.Sprintf("failed to encode manifest: %v", err))
		return
	}

	if err := WriteHeader(conn, int64(len(payload))); err != nil {
		slog.Warn("compare: manifest header failed", "peer", peer, "error", err)
		return
	}
	if _, err := conn.Write(payload); err != nil {
		slog.Warn("compare: manifest send failed", "peer", peer, "error", err)
		return
	}
	s.cfg.Stats.AddBytesSent(int64(len(payload)))
	slog.Info("compare: manifest sent", "peer", peer, "files", len(m))
}

// receiveFiles imports an archive of selected files into the root. No
// backup is taken: this is an incremental import, not a tree replacement.
func (s *CompareServer) receiveFiles(conn net.Conn, peer string) {
	length, err := ReadHeader(conn)
	if err != nil {
		slog.Warn("compare: bad header", "peer", peer, "error", err)
		s.fail(conn, fmt.Sprintf("bad transfer header from %s: %v", peer, err))
		return
	}

	tmp, err := os.CreateTemp("", "lansync_recv_*.tar.zst")
	if err != nil {
		s.fail(conn, fmt.Sprintf("create temp archive: %v", err))
		return
	}
	defer os.Remove(tmp.Name())

	err = copyN(tmp, conn, length, func(written int64) {
		s.cfg.Hooks.progress(float64(written) / float64(length) * 50)
	})
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		slog.Warn("compare: receive failed", "peer", peer, "error", err)
		s.fail(conn, transferFailureMessage(err))
		return
	}
	s.cfg.Stats.AddBytesReceived(length)

	extracted, err := archive.ExtractInto(tmp.Name(), s.cfg.Root, func(p float64) {
		s.cfg.Hooks.progress(50 + p/2)
	})
	if err != nil {
		slog.Error("compare: extract failed", "peer", peer, "error", err)
		s.fail(conn, fmt.Sprintf("failed to extract received files: %v", err))
		return
	}
	s.cfg.Stats.AddFilesExtracted(int64(extracted))

	if err := writeReply(conn, true); err != nil {
		slog.Warn("compare: reply failed", "peer", peer, "error", err)
	}
	s.cfg.Stats.AddTransferOK()
	slog.Info("compare: files imported", "peer", peer, "bytes", length)
	s.cfg.Hooks.complete(true, fmt.Sprintf("files received from %s", peer))
}

func (s *CompareServer) fail(conn net.Conn, message string) {
	s.cfg.Stats.AddTransferFailed()
	writeReply(conn, false)
	s.cfg.Hooks.error(message)
}
