package server

import (
	"bufio"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tecu23/lobby-server/pkg/wire"
)

func newPipeConnection(t *testing.T, sendTimeout time.Duration) (*Connection, net.Conn) {
	t.Helper()

	client, srv := net.Pipe()
	t.Cleanup(func() { client.Close() })

	conn := NewConnection(wire.NewTCPConn(srv), sendTimeout, zap.NewNop())
	go conn.WritePump()

	return conn, client
}

// Lines queued before Close must still reach the peer; the usual pattern is
// one final message immediately followed by connection teardown.
func TestCloseFlushesQueuedLines(t *testing.T) {
	conn, client := newPipeConnection(t, time.Second)

	require.NoError(t, conn.Send("INFO:You have quit the game."))
	require.NoError(t, conn.Send("GAME_OVER:Checkmate! Winner: black"))
	conn.Close()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	r := bufio.NewReader(client)

	line, err := r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "INFO:You have quit the game.\n", line)

	line, err = r.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "GAME_OVER:Checkmate! Winner: black\n", line)

	// After the flush the transport is closed.
	_, err = r.ReadString('\n')
	assert.Error(t, err)
}

func TestSendAfterCloseFails(t *testing.T) {
	conn, client := newPipeConnection(t, time.Second)
	defer client.Close()

	conn.Close()

	assert.ErrorIs(t, conn.Send("TURN:white"), ErrConnClosed)
}

func TestCloseIdempotent(t *testing.T) {
	conn, _ := newPipeConnection(t, time.Second)

	assert.NotPanics(t, func() {
		conn.Close()
		conn.Close()
	})
}
