package client

import (
	"fmt"
	"net"
	"time"

	"github.com/mapkv/mapkv/lib/store"
	"github.com/mapkv/mapkv/rpc/codec"
	"github.com/mapkv/mapkv/rpc/common"
)

// Client sends requests to a mapkv server and parses its responses. It is
// not safe for concurrent use by multiple goroutines.
type Client struct {
	timeout time.Duration

	lastEndpoint string
	conn         net.Conn
}

// New creates a Client. timeout, if non-zero, bounds every Send's
// connect/read/write deadline.
func New(timeout time.Duration) *Client {
	return &Client{timeout: timeout}
}

// Send dials endpoint (reusing the cached connection if it's already
// connected there), sends req, and returns the decoded response. Key and
// value lengths are validated before any I/O is attempted, so an oversize
// request never reaches the network.
func (c *Client) Send(endpoint string, req codec.Request) (codec.Response, error) {
	var resp codec.Response

	if e := store.ValidateKey(req.Key); e != store.ErrNone {
		return resp, fmt.Errorf("client: key exceeds %d bytes", store.MaxKeyLength)
	}
	if len(req.Value) > store.MaxWireValueLength {
		return resp, fmt.Errorf("client: value exceeds %d bytes", store.MaxWireValueLength)
	}

	if err := c.ensureConnected(endpoint); err != nil {
		return resp, err
	}

	resp, err := c.roundTrip(req)
	if err != nil {
		c.drop()
		return codec.Response{}, err
	}
	return resp, nil
}

func (c *Client) ensureConnected(endpoint string) error {
	if c.conn != nil && c.lastEndpoint == endpoint {
		return nil
	}
	c.drop()

	dialer := net.Dialer{Timeout: c.timeout}
	conn, err := dialer.Dial("tcp", endpoint)
	if err != nil {
		return fmt.Errorf("client: dial %s: %w", endpoint, err)
	}
	c.conn = conn
	c.lastEndpoint = endpoint
	return nil
}

func (c *Client) roundTrip(req codec.Request) (codec.Response, error) {
	var resp codec.Response

	if c.timeout > 0 {
		c.conn.SetDeadline(time.Now().Add(c.timeout))
	}

	payload, err := codec.EncodeRequest(req)
	if err != nil {
		return resp, err
	}
	if err := common.WriteFrame(c.conn, payload); err != nil {
		return resp, fmt.Errorf("client: write: %w", err)
	}

	respPayload, err := common.ReadFrame(c.conn)
	if err != nil {
		return resp, fmt.Errorf("client: read: %w", err)
	}

	resp, err = codec.DecodeResponse(respPayload)
	if err != nil {
		return resp, fmt.Errorf("client: decode response: %w", err)
	}
	return resp, nil
}

// drop closes and forgets the cached connection, if any.
func (c *Client) drop() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Close releases the cached connection, if any. The Client can be reused
// afterward; the next Send simply reconnects.
func (c *Client) Close() error {
	c.drop()
	return nil
}
