package connection

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// Client sends commands to a respkv server and reads the replies.
// A Client is not safe for concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	decoder *resp.Decoder
	r       *resp.Reader
	w       *bufio.Writer
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", addr, err)
	}
	return newClient(conn, addr, timeout), nil
}

func newClient(conn net.Conn, addr string, timeout time.Duration) *Client {
	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		decoder: resp.NewDecoder(resp.DefaultLimits()),
		r:       resp.NewReader(conn, resp.DefaultReaderSize),
		w:       bufio.NewWriter(conn),
	}
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Close closes the connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// Do sends one command and returns its reply. Error replies from the
// server are returned as values, not Go errors.
func (c *Client) Do(args ...string) (resp.Value, error) {
	if len(args) == 0 {
		return resp.Value{}, errors.New("empty command")
	}
	return c.roundTrip(func() error { return resp.WriteCommand(c.w, args...) })
}

// DoValue sends an arbitrary frame and returns the reply.
func (c *Client) DoValue(cmd resp.Value) (resp.Value, error) {
	return c.roundTrip(func() error { return resp.WriteValue(c.w, cmd) })
}

func (c *Client) roundTrip(write func() error) (resp.Value, error) {
	if err := c.conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return resp.Value{}, err
	}
	if err := write(); err != nil {
		return resp.Value{}, fmt.Errorf("write: %w", err)
	}
	if err := c.w.Flush(); err != nil {
		return resp.Value{}, fmt.Errorf("write: %w", err)
	}

	v, err := c.r.ReadValue(c.decoder)
	switch {
	case err == nil:
		return v, nil
	case errors.Is(err, resp.ErrProtocol), errors.Is(err, resp.ErrLimitExceeded):
		return resp.Value{}, fmt.Errorf("read reply: %w", err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return resp.Value{}, fmt.Errorf("server closed the connection: %w", err)
	default:
		return resp.Value{}, fmt.Errorf("read: %w", err)
	}
}
