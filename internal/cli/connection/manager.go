package connection

import (
	"context"
	"time"

	"github.com/yndnr/respkv-go/pkg/resp"
)

// Manager keeps one connection to a server, dialing on first use and again
// after a connection failure.
type Manager struct {
	addr    string
	timeout time.Duration
	current *Client
}

// NewManager creates a new connection manager.
func NewManager(addr string, timeout time.Duration) *Manager {
	return &Manager{addr: addr, timeout: timeout}
}

// Addr returns the server address.
func (m *Manager) Addr() string {
	return m.addr
}

// Client returns the current connection, dialing if there is none.
func (m *Manager) Client(ctx context.Context) (*Client, error) {
	if m.current != nil {
		return m.current, nil
	}
	c, err := Dial(ctx, m.addr, m.timeout)
	if err != nil {
		return nil, err
	}
	m.current = c
	return c, nil
}

// Do sends a command on the current connection. After a transport error
// the connection is dropped so the next call redials.
func (m *Manager) Do(ctx context.Context, args ...string) (resp.Value, error) {
	c, err := m.Client(ctx)
	if err != nil {
		return resp.Value{}, err
	}
	v, err := c.Do(args...)
	if err != nil {
		m.Disconnect()
		return resp.Value{}, err
	}
	return v, nil
}

// Disconnect closes the current connection.
func (m *Manager) Disconnect() {
	if m.current != nil {
		_ = m.current.Close()
		m.current = nil
	}
}

// IsConnected returns true if connected to a server.
func (m *Manager) IsConnected() bool {
	return m.current != nil
}
