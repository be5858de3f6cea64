// Package wire abstracts the persistent line-delimited transports the server
// accepts: raw TCP and websocket. Both deliver one protocol message per
// line.
package wire

import (
	"bufio"
	"net"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is one ordered byte stream peer, framed into '\n'-terminated lines.
type Conn interface {
	// ReadLine blocks for the next line, stripped of its terminator.
	ReadLine() (string, error)
	// WriteLine writes one message followed by '\n'.
	WriteLine(line string) error
	// SetReadDeadline bounds the next ReadLine. The zero time clears it.
	SetReadDeadline(t time.Time) error
	RemoteAddr() string
	Close() error
}

type tcpConn struct {
	conn    net.Conn
	reader  *bufio.Reader
	partial strings.Builder
}

// NewTCPConn frames a stream connection into protocol lines.
func NewTCPConn(conn net.Conn) Conn {
	return &tcpConn{conn: conn, reader: bufio.NewReader(conn)}
}

func (c *tcpConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		// An expired read deadline can interrupt mid-line. Keep the fragment
		// so the next call returns the whole message.
		c.partial.WriteString(line)
		return "", err
	}

	if c.partial.Len() > 0 {
		line = c.partial.String() + line
		c.partial.Reset()
	}

	return strings.TrimRight(line, "\r\n"), nil
}

func (c *tcpConn) WriteLine(line string) error {
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *tcpConn) SetReadDeadline(t time.Time) error { return c.conn.SetReadDeadline(t) }

func (c *tcpConn) RemoteAddr() string { return c.conn.RemoteAddr().String() }

func (c *tcpConn) Close() error { return c.conn.Close() }

type wsConn struct {
	ws *websocket.Conn
}

// NewWebsocketConn adapts a websocket connection: every text message is one
// protocol line.
func NewWebsocketConn(ws *websocket.Conn) Conn {
	return &wsConn{ws: ws}
}

func (c *wsConn) ReadLine() (string, error) {
	for {
		msgType, msg, err := c.ws.ReadMessage()
		if err != nil {
			return "", err
		}

		// We only handle text
		if msgType == websocket.TextMessage {
			return strings.TrimRight(string(msg), "\r\n"), nil
		}
	}
}

func (c *wsConn) WriteLine(line string) error {
	return c.ws.WriteMessage(websocket.TextMessage, []byte(line+"\n"))
}

// SetReadDeadline is a no-op: an expired read deadline poisons a gorilla
// connection permanently, and the websocket layer already detects peer loss
// through its close handshake and control frames.
func (c *wsConn) SetReadDeadline(_ time.Time) error { return nil }

func (c *wsConn) RemoteAddr() string { return c.ws.RemoteAddr().String() }

func (c *wsConn) Close() error { return c.ws.Close() }
