package syncnet

import (
	"net"
	"time"
)

// Default client-side timeouts. Listener sockets instead poll with a
// short deadline so a stop flag is observed promptly.
const (
	DefaultConnectTimeout = 30 * time.Second
	DefaultIdleTimeout    = 60 * time.Second

	// acceptPoll is the accept/read deadline on listener sockets; it is
	// the only cancellation mechanism for a running server.
	acceptPoll = time.Second
)

// idleConn refreshes the connection deadline before every read and write
// so a stalled peer fails the transfer instead of hanging it forever,
// while long transfers that keep moving are unaffected.
type idleConn struct {
	net.Conn
	timeout time.Duration
}

func newIdleConn(c net.Conn, timeout time.Duration) *idleConn {
	if timeout <= 0 {
		timeout = DefaultIdleTimeout
	}
	return &idleConn{Conn: c, timeout: timeout}
}

func (c *idleConn) Read(p []byte) (int, error) {
	if err := c.SetReadDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *idleConn) Write(p []byte) (int, error) {
	if err := c.SetWriteDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}
