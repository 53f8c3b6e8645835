package discovery

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startResponder(t *testing.T, cfg ResponderConfig) *Responder {
	t.Helper()
	r := NewResponder(cfg)
	require.NoError(t, r.Start())
	t.Cleanup(r.Stop)
	return r
}

func dialResponder(t *testing.T, r *Responder) *net.UDPConn {
	t.Helper()
	conn, err := net.DialUDP("udp4", nil, &net.UDPAddr{
		IP:   net.IPv4(127, 0, 0, 1),
		Port: r.Addr().Port,
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestResponderAnswersToken(t *testing.T) {
	r := startResponder(t, ResponderConfig{Port: 0})
	conn := dialResponder(t, r)

	_, err := conn.Write([]byte(Token))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	hostname, ok := parseReply(buf[:n], DefaultAppTag)
	require.True(t, ok)

	want, err := os.Hostname()
	require.NoError(t, err)
	assert.Equal(t, want, hostname)
}

func TestResponderIgnoresOtherPayloads(t *testing.T) {
	r := startResponder(t, ResponderConfig{Port: 0})
	conn := dialResponder(t, r)

	_, err := conn.Write([]byte("SOMETHING_ELSE"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	buf := make([]byte, 256)
	_, err = conn.Read(buf)
	require.Error(t, err)
	ne, ok := err.(net.Error)
	require.True(t, ok)
	assert.True(t, ne.Timeout())
}

func TestResponderCustomTokenAndTag(t *testing.T) {
	r := startResponder(t, ResponderConfig{Port: 0, Token: "PING", AppTag: "MYAPP"})
	conn := dialResponder(t, r)

	_, err := conn.Write([]byte("PING"))
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 256)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	_, ok := parseReply(buf[:n], "MYAPP")
	assert.True(t, ok)
}

func TestResponderStopIdempotent(t *testing.T) {
	r := NewResponder(ResponderConfig{Port: 0})
	require.NoError(t, r.Start())

	done := make(chan struct{})
	go func() {
		r.Stop()
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestParseReply(t *testing.T) {
	hostname, ok := parseReply([]byte("ALSWAIFE:office-pc"), "ALSWAIFE")
	require.True(t, ok)
	assert.Equal(t, "office-pc", hostname)

	_, ok = parseReply([]byte("OTHER:office-pc"), "ALSWAIFE")
	assert.False(t, ok)

	_, ok = parseReply([]byte("garbage"), "ALSWAIFE")
	assert.False(t, ok)

	// Hostname containing the separator survives intact.
	hostname, ok = parseReply([]byte("ALSWAIFE:host:with:colons"), "ALSWAIFE")
	require.True(t, ok)
	assert.Equal(t, "host:with:colons", hostname)
}

func TestCollectRepliesSkipsSelfAndDupes(t *testing.T) {
	// Stand-in peer socket that replies twice, so dedupe is observable.
	peer, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer peer.Close()

	client, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer client.Close()

	clientAddr := client.LocalAddr().(*net.UDPAddr)
	reply := replyPayload(DefaultAppTag)
	for i := 0; i < 2; i++ {
		_, err = peer.WriteToUDP(reply, clientAddr)
		require.NoError(t, err)
	}

	peers, err := collectReplies(client, DefaultAppTag, 500*time.Millisecond, nil)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "127.0.0.1", peers[0].IP)

	// The same reply is dropped entirely when the sender is one of our
	// own addresses.
	_, err = peer.WriteToUDP(reply, clientAddr)
	require.NoError(t, err)
	peers, err = collectReplies(client, DefaultAppTag, 500*time.Millisecond,
		map[string]bool{"127.0.0.1": true})
	require.NoError(t, err)
	assert.Empty(t, peers)
}

func TestLocalIPNonEmpty(t *testing.T) {
	assert.NotEmpty(t, LocalIP())
}
