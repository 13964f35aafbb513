package redisserver

import (
	"bufio"
	"net"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// initialBufferSize is the starting size of a connection's read buffer and
// the size of its reply buffer.
const initialBufferSize = 4096

// Conn represents a single client connection.
type Conn struct {
	id      string
	netConn net.Conn

	in  *resp.Reader
	out *bufio.Writer

	limiter *rate.Limiter
	closed  atomic.Bool
}

func newConn(c net.Conn, rateLimit int, writeTimeout time.Duration) *Conn {
	conn := &Conn{
		id:      ulid.Make().String(),
		netConn: c,
		in:      resp.NewReader(c, initialBufferSize),
		out:     bufio.NewWriterSize(deadlineWriter{c, writeTimeout}, initialBufferSize),
	}
	if rateLimit > 0 {
		conn.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	}
	return conn
}

// ID returns the connection id.
func (c *Conn) ID() string {
	return c.id
}

// RemoteAddr returns the peer address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

// Close closes the underlying socket. It is safe to call more than once.
func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// pending returns the bytes received but not yet consumed.
func (c *Conn) pending() []byte {
	return c.in.Buffered()
}

// flush sends the buffered replies.
func (c *Conn) flush() error {
	return c.out.Flush()
}

// deadlineWriter arms the write deadline before every socket write, so each
// write of buffered replies gets the full timeout.
type deadlineWriter struct {
	conn    net.Conn
	timeout time.Duration
}

func (w deadlineWriter) Write(p []byte) (int, error) {
	if w.timeout > 0 {
		if err := w.conn.SetWriteDeadline(time.Now().Add(w.timeout)); err != nil {
			return 0, err
		}
	}
	return w.conn.Write(p)
}
