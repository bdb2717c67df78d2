package storerpc

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"
	"pkt.systems/wheelhouse/schema"
)

// DefaultCallTimeout bounds every remote call. The store lives in another
// process; a stuck call must never stall shell work.
const DefaultCallTimeout = 5 * time.Second

// request is one frame on the wire: newline-delimited JSON, matched to its
// response by correlation id.
type request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type response struct {
	ID     string          `json:"id"`
	Error  string          `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// Option adjusts client construction.
type Option func(*Client)

// WithTimeout overrides the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithLogger attaches a logger to the client.
func WithLogger(logger pslog.Logger) Option {
	return func(c *Client) {
		c.log = logger
	}
}

// Client multiplexes typed store calls over a single shared connection.
// Concurrent callers are matched to responses by correlation id; responses
// for unknown ids are dropped.
type Client struct {
	conn    net.Conn
	timeout time.Duration
	log     pslog.Logger

	writeMu sync.Mutex
	enc     *json.Encoder

	mu      sync.Mutex
	pending map[string]chan response
	closed  bool

	readDone chan struct{}
}

// Dial connects to the store service and starts the response reader.
func Dial(ctx context.Context, network, address string, opts ...Option) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return NewClient(conn, opts...), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn, opts ...Option) *Client {
	c := &Client{
		conn:     conn,
		timeout:  DefaultCallTimeout,
		enc:      json.NewEncoder(conn),
		pending:  make(map[string]chan response),
		readDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readLoop()
	return c
}

// Close tears down the connection and fails every pending call.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	err := c.conn.Close()
	<-c.readDone
	return err
}

func (c *Client) readLoop() {
	defer close(c.readDone)
	dec := json.NewDecoder(c.conn)
	for {
		var resp response
		if err := dec.Decode(&resp); err != nil {
			c.failPending(err)
			return
		}
		c.mu.Lock()
		ch := c.pending[resp.ID]
		delete(c.pending, resp.ID)
		c.mu.Unlock()
		if ch == nil {
			if c.log != nil {
				c.log.Debug("store response for unknown call dropped", "id", resp.ID)
			}
			continue
		}
		ch <- resp
	}
}

func (c *Client) failPending(err error) {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]chan response)
	c.closed = true
	c.mu.Unlock()
	if len(pending) > 0 && c.log != nil {
		c.log.Warn("store connection lost", "pending", len(pending), "err", err)
	}
	for _, ch := range pending {
		ch <- response{Error: schema.ErrStoreUnavailable.Error()}
	}
}

// call issues one request and decodes its correlated response into result.
// A nil result discards the payload.
func (c *Client) call(ctx context.Context, method string, params, result any) error {
	var raw json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		raw = data
	}
	id := uuid.NewString()
	ch := make(chan response, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return schema.ErrStoreUnavailable
	}
	c.pending[id] = ch
	c.mu.Unlock()

	c.writeMu.Lock()
	err := c.enc.Encode(request{ID: id, Method: method, Params: raw})
	c.writeMu.Unlock()
	if err != nil {
		c.forget(id)
		return schema.ErrStoreUnavailable
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()
	select {
	case resp := <-ch:
		if resp.Error != "" {
			if resp.Error == schema.ErrStoreUnavailable.Error() {
				return schema.ErrStoreUnavailable
			}
			return errors.New(resp.Error)
		}
		if result == nil || len(resp.Result) == 0 {
			return nil
		}
		return json.Unmarshal(resp.Result, result)
	case <-timer.C:
		c.forget(id)
		if c.log != nil {
			c.log.Warn("store call timed out", "method", method, "id", id)
		}
		return schema.ErrStoreTimeout
	case <-ctx.Done():
		c.forget(id)
		return ctx.Err()
	}
}

// forget abandons a pending call. A late response for the id is dropped by
// the read loop.
func (c *Client) forget(id string) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}
