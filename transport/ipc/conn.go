package ipc

import (
	"bufio"
	"errors"
	"net"
	"sync"
	"sync/atomic"
)

var ErrClosed = errors.New("ipc: connection closed")

// Conn is one open duplex transport handle. Writers are serialised; the read
// side belongs to a single reader and needs no lock.
type Conn struct {
	conn   net.Conn
	path   string
	mu     sync.Mutex
	closed atomic.Bool
	reader *bufio.Reader
}

func NewConn(c net.Conn, path string) *Conn {
	return &Conn{
		conn:   c,
		path:   path,
		reader: bufio.NewReader(c),
	}
}

// Path is the endpoint the handle was opened on.
func (c *Conn) Path() string { return c.path }

// Close does not take the write lock so that a writer blocked on a stalled
// peer is released by it.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.conn.Close()
}

func (c *Conn) SendRaw(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}
	_, err := c.conn.Write(b)
	return err
}

func (c *Conn) SendOp(op OpCode, payload any) error {
	data, err := EncodeFrameOp(op, payload)
	if err != nil {
		return err
	}
	return c.SendRaw(data)
}

func (c *Conn) Receive() (Frame, error) {
	if c.closed.Load() {
		return Frame{}, ErrClosed
	}
	return ReadFrame(c.reader)
}
