package syncnet

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// listener owns a TCP accept loop that handles one connection fully
// before accepting the next. Sequential handling is deliberate: sync is a
// manual, infrequent, human-triggered operation, and handling one
// transfer at a time is what makes unlocked extraction into the root
// safe. The short accept deadline exists only so stop() is observed.
type listener struct {
	ln      *net.TCPListener
	running atomic.Bool
	wg      sync.WaitGroup
}

func (l *listener) start(name string, port int, handle func(net.Conn)) error {
	ln, err := net.ListenTCP("tcp4", &net.TCPAddr{Port: port})
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", port, err)
	}
	l.ln = ln
	l.running.Store(true)

	l.wg.Add(1)
	go l.acceptLoop(name, handle)

	slog.Info("listener started", "name", name, "addr", ln.Addr())
	return nil
}

func (l *listener) stop() {
	if !l.running.Swap(false) {
		return
	}
	l.ln.Close()
	l.wg.Wait()
}

// port returns the bound port, useful when started with port 0.
func (l *listener) port() int {
	return l.ln.Addr().(*net.TCPAddr).Port
}

func (l *listener) acceptLoop(name string, handle func(net.Conn)) {
	defer l.wg.Done()

	for l.running.Load() {
		l.ln.SetDeadline(time.Now().Add(acceptPoll))
		conn, err := l.ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if l.running.Load() {
				slog.Error("accept failed", "name", name, "error", err)
			}
			return
		}

		slog.Debug("connection accepted", "name", name, "peer", conn.RemoteAddr())
		handle(conn)
		conn.Close()
	}
}
