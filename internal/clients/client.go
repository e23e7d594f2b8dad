package clients

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rzbill/radgw/internal/radius"
)

// Client is a reference-counted handle to a source-protocol peer. A client
// can have multiple exchanges in flight concurrently; whoever holds a
// reference must release it exactly once.
type Client struct {
	addr     string
	identity string
	secret   []byte
	refs     atomic.Int64
}

// Addr returns the peer address the client was registered under.
func (c *Client) Addr() string { return c.addr }

// Identity returns the expected NAS-Identifier, empty if unchecked.
func (c *Client) Identity() string { return c.identity }

// Secret returns the shared secret for authenticator checks.
func (c *Client) Secret() []byte { return c.secret }

// Refs returns the current reference count.
func (c *Client) Refs() int64 { return c.refs.Load() }

// Release drops one reference. Releasing below zero is an ownership bug.
func (c *Client) Release() {
	if c.refs.Add(-1) < 0 {
		panic(fmt.Sprintf("clients: refcount underflow for %s", c.addr))
	}
}

// VerifyAuthenticator validates message integrity against the client's
// shared secret.
func (c *Client) VerifyAuthenticator(m *radius.Message) error {
	return radius.VerifyRequest(m, c.secret)
}

// CheckOrigin validates that the message's claimed identity is consistent
// with the client's connection identity: a NAS-Identifier attribute must
// match the registered identity, and a NAS-IP-Address attribute must match
// the peer address.
func (c *Client) CheckOrigin(m *radius.Message) error {
	if a := m.Lookup(radius.AttrNASIdentifier); a != nil && c.identity != "" {
		if string(a.Value) != c.identity {
			return fmt.Errorf("clients: NAS-Identifier %q does not match registered identity %q for %s",
				a.Value, c.identity, c.addr)
		}
	}
	if a := m.Lookup(radius.AttrNASIPAddress); a != nil && len(a.Value) == 4 {
		claimed := net.IP(a.Value).String()
		host, _, err := net.SplitHostPort(c.addr)
		if err != nil {
			host = c.addr
		}
		if claimed != host {
			return fmt.Errorf("clients: NAS-IP-Address %s does not match peer %s", claimed, c.addr)
		}
	}
	return nil
}

// Table is the registry of known source-protocol peers.
type Table struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

// NewTable creates an empty client table.
func NewTable() *Table {
	return &Table{clients: make(map[string]*Client)}
}

// Register adds a peer. Identity may be empty to skip the identity check.
func (t *Table) Register(addr, identity string, secret []byte) *Client {
	t.mu.Lock()
	defer t.mu.Unlock()
	c := &Client{addr: addr, identity: identity, secret: secret}
	t.clients[addr] = c
	return c
}

// Acquire looks up the client for a peer address and takes a reference.
func (t *Table) Acquire(addr string) (*Client, error) {
	t.mu.RLock()
	c, ok := t.clients[addr]
	t.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("clients: unknown peer %s", addr)
	}
	c.refs.Add(1)
	return c, nil
}
