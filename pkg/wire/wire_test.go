package wire

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPConnRoundTrip(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	conn := NewTCPConn(srv)
	defer conn.Close()

	go func() {
		_, _ = client.Write([]byte("MOVE:e2e4\n"))
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "MOVE:e2e4", line)

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 64)
		n, err := client.Read(buf)
		require.NoError(t, err)
		assert.Equal(t, "TURN:white\n", string(buf[:n]))
	}()

	require.NoError(t, conn.WriteLine("TURN:white"))
	<-done
}

func TestTCPConnStripsCarriageReturn(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	conn := NewTCPConn(srv)
	defer conn.Close()

	go func() {
		_, _ = client.Write([]byte("QUIT\r\n"))
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "QUIT", line)
}

func TestTCPConnKeepsPartialLineAcrossDeadline(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	conn := NewTCPConn(srv)
	defer conn.Close()

	go func() {
		_, _ = client.Write([]byte("MOVE:"))
	}()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, err := conn.ReadLine()
	require.Error(t, err)
	nerr, ok := err.(net.Error)
	require.True(t, ok)
	require.True(t, nerr.Timeout())

	// The rest of the line arrives after the deadline expired; the fragment
	// read before it must not be lost.
	require.NoError(t, conn.SetReadDeadline(time.Time{}))
	go func() {
		_, _ = client.Write([]byte("e2e4\n"))
	}()

	line, err := conn.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "MOVE:e2e4", line)
}

func TestTCPConnReadDeadline(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	conn := NewTCPConn(srv)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(20*time.Millisecond)))

	_, err := conn.ReadLine()
	require.Error(t, err)
	nerr, ok := err.(net.Error)
	require.True(t, ok)
	assert.True(t, nerr.Timeout())
}
