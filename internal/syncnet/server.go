package syncnet

import (
	"fmt"
	"log/slog"
	"net"
	"os"

	"github.com/alswaife/lansync/internal/archive"
	"github.com/alswaife/lansync/internal/discovery"
	"github.com/alswaife/lansync/internal/stats"
)

// ServerConfig configures a SyncServer or CompareServer.
type ServerConfig struct {
	// Root is the one directory tree treated as the unit of
	// synchronization. It is all the server knows about the host app.
	Root string
	Port int
	// Discovery configures the embedded responder started by SyncServer.
	Discovery discovery.ResponderConfig
	Hooks     Hooks
	Stats     *stats.Collector
}

// SyncServer receives a full data tree from a peer and replaces its own,
// taking a backup of the existing tree first. One instance is constructed
// per call site and torn down explicitly; there is no global listener.
type SyncServer struct {
	cfg       ServerConfig
	l         listener
	responder *discovery.Responder
}

// NewSyncServer creates a sync server. Call Start to begin listening.
func NewSyncServer(cfg ServerConfig) *SyncServer {
	if cfg.Stats == nil {
		cfg.Stats = stats.NewCollector()
	}
	return &SyncServer{
		cfg:       cfg,
		responder: discovery.NewResponder(cfg.Discovery),
	}
}

// Start binds the TCP listener and the embedded discovery responder.
func (s *SyncServer) Start() error {
	if err := s.responder.Start(); err != nil {
		return err
	}
	if err := s.l.start("sync", s.cfg.Port, s.handle); err != nil {
		s.responder.Stop()
		return err
	}
	return nil
}

// Stop shuts down the listener and the discovery responder. Blocks until
// both loops exit; an in-flight transfer is not interrupted.
func (s *SyncServer) Stop() {
	s.l.stop()
	s.responder.Stop()
}

// Port returns the bound sync port, useful when configured with port 0.
func (s *SyncServer) Port() int {
	return s.l.port()
}

// handle runs one full transfer session: header, payload into a temp
// archive (progress 0-50), extraction with backup (50-100), status reply.
// The archive is fully received before extraction starts, so an aborted
// transfer never partially overwrites the tree.
func (s *SyncServer) handle(nc net.Conn) {
	peer := nc.RemoteAddr().String()
	conn := newIdleConn(nc, DefaultIdleTimeout)

	length, err := ReadHeader(conn)
	if err != nil {
		slog.Warn("sync: bad header", "peer", peer, "error", err)
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
		slog.Warn("sync: receive failed", "peer", peer, "error", err)
		s.fail(conn, transferFailureMessage(err))
		return
	}
	s.cfg.Stats.AddBytesReceived(length)

	backupPath, extracted, err := archive.Extract(tmp.Name(), s.cfg.Root, func(p float64) {
		s.cfg.Hooks.progress(50 + p/2)
	})
	if err != nil {
		slog.Error("sync: extract failed", "peer", peer, "backup", backupPath, "error", err)
		s.fail(conn, fmt.Sprintf("failed to extract received data: %v", err))
		return
	}
	s.cfg.Stats.AddFilesExtracted(int64(extracted))

	if err := writeReply(conn, true); err != nil {
		slog.Warn("sync: reply failed", "peer", peer, "error", err)
	}
	s.cfg.Stats.AddTransferOK()
	slog.Info("sync: tree replaced", "peer", peer, "bytes", length, "backup", backupPath)
	s.cfg.Hooks.complete(true, fmt.Sprintf("data received from %s", peer))
}

// fail reports the error to the host and replies FAIL so the peer does
// not wait out its read deadline.
func (s *SyncServer) fail(conn net.Conn, message string) {
	s.cfg.Stats.AddTransferFailed()
	writeReply(conn, false)
	s.cfg.Hooks.error(message)
}
