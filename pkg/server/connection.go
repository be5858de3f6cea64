package server

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tecu23/lobby-server/pkg/wire"
)

// ErrConnClosed reports a send against a connection whose write side failed
// or was shut down.
var ErrConnClosed = errors.New("connection closed")

// ErrSendTimeout reports a recipient too stalled to accept a message within
// the configured bound.
var ErrSendTimeout = errors.New("send timed out")

// Connection wraps one wire peer. Outbound lines go through a buffered
// channel drained by a single write pump, so broadcasters never block on the
// socket; a stalled or dead peer trips the failed latch instead and its own
// handler reacts on the next read.
type Connection struct {
	ID uuid.UUID

	conn wire.Conn

	send        chan string
	quit        chan struct{}
	closeOnce   sync.Once
	failed      atomic.Bool
	sendTimeout time.Duration

	logger *zap.Logger
}

// NewConnection wraps a wire connection.
func NewConnection(conn wire.Conn, sendTimeout time.Duration, logger *zap.Logger) *Connection {
	return &Connection{
		ID:          uuid.New(),
		conn:        conn,
		send:        make(chan string, 256), // buffered for outgoing messages
		quit:        make(chan struct{}),
		sendTimeout: sendTimeout,
		logger:      logger,
	}
}

// WritePump drains the send channel onto the wire and owns the transport's
// lifetime: on Close it flushes whatever is still queued, then closes the
// underlying connection. It runs in its own goroutine and exits on Close or
// the first write failure.
func (c *Connection) WritePump() {
	defer func() {
		if err := c.conn.Close(); err != nil {
			c.logger.Debug("close error",
				zap.String("connection_id", c.ID.String()),
				zap.Error(err))
		}
	}()

	for {
		select {
		case line := <-c.send:
			if err := c.conn.WriteLine(line); err != nil {
				c.failed.Store(true)
				c.logger.Debug("write error",
					zap.String("connection_id", c.ID.String()),
					zap.Error(err))
				return
			}
		case <-c.quit:
			c.flush()
			return
		}
	}
}

// flush writes the lines queued before shutdown, so a final message enqueued
// right before Close still reaches the peer.
func (c *Connection) flush() {
	for {
		select {
		case line := <-c.send:
			if err := c.conn.WriteLine(line); err != nil {
				c.failed.Store(true)
				return
			}
		default:
			return
		}
	}
}

// Send queues one line for delivery. It fails fast on a dead or closed
// connection and after a bounded wait on a stalled one.
func (c *Connection) Send(line string) error {
	if c.failed.Load() {
		return ErrConnClosed
	}

	select {
	case <-c.quit:
		return ErrConnClosed
	default:
	}

	select {
	case c.send <- line:
		return nil
	default:
	}

	timer := time.NewTimer(c.sendTimeout)
	defer timer.Stop()

	select {
	case c.send <- line:
		return nil
	case <-c.quit:
		return ErrConnClosed
	case <-timer.C:
		c.failed.Store(true)
		return ErrSendTimeout
	}
}

// Failed reports whether the write side has recorded a delivery failure.
func (c *Connection) Failed() bool { return c.failed.Load() }

// ReadLine blocks for the next inbound line.
func (c *Connection) ReadLine() (string, error) { return c.conn.ReadLine() }

// SetReadDeadline bounds the next ReadLine.
func (c *Connection) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

// RemoteAddr returns the peer's display address.
func (c *Connection) RemoteAddr() string { return c.conn.RemoteAddr() }

// Close signals shutdown and rejects further sends. The write pump flushes
// queued lines and then closes the transport. Safe to call more than once.
func (c *Connection) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
}
