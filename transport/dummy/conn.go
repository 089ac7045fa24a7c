package dummy

import (
	"bytes"
	"io"
	"net"
	"sync"
	"time"
)

// Conn is an in-memory net.Conn. Reads are served from the preset request, writes are
// collected. It is safe for concurrent use.
type Conn struct {
	mu       sync.Mutex
	request  *bytes.Reader
	written  []byte
	writeErr error
	closed   bool
}

func NewConn(request string) *Conn {
	return &Conn{
		request: bytes.NewReader([]byte(request)),
	}
}

// FailWrites makes every following write fail with the passed error.
func (c *Conn) FailWrites(err error) *Conn {
	c.mu.Lock()
	c.writeErr = err
	c.mu.Unlock()
	return c
}

func (c *Conn) Read(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	if c.request == nil {
		return 0, io.EOF
	}

	return c.request.Read(b)
}

func (c *Conn) Write(b []byte) (n int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return 0, net.ErrClosed
	}

	if c.writeErr != nil {
		return 0, c.writeErr
	}

	c.written = append(c.written, b...)
	return len(b), nil
}

// Unread returns the number of request bytes nobody has read yet.
func (c *Conn) Unread() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.request == nil {
		return 0
	}

	return c.request.Len()
}

// Written returns everything that was written so far.
func (c *Conn) Written() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return string(c.written)
}

func (c *Conn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *Conn) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *Conn) LocalAddr() net.Addr {
	return addr
}

func (c *Conn) RemoteAddr() net.Addr {
	return addr
}

func (c *Conn) SetDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetReadDeadline(time.Time) error {
	return nil
}

func (c *Conn) SetWriteDeadline(time.Time) error {
	return nil
}

var addr = &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0}
