package paramstore

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

const dialTimeout = 500 * time.Millisecond

// Client implements cache.ParameterStore over a Unix socket served by
// Serve. Each call uses its own connection.
type Client struct {
	socketPath string
}

func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

func (c *Client) roundTrip(ctx context.Context, req Request) (*Response, error) {
	d := net.Dialer{Timeout: dialTimeout}
	conn, err := d.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if err := json.NewEncoder(conn).Encode(&req); err != nil {
		return nil, err
	}
	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return nil, err
	}
	if !resp.OK {
		return nil, errorOf(resp.Code, resp.Error)
	}
	return &resp, nil
}

func (c *Client) GetParameter(ctx context.Context, name string, decrypt bool) (*cache.Parameter, error) {
	resp, err := c.roundTrip(ctx, Request{Op: OpGet, Name: name, Decrypt: decrypt})
	if err != nil {
		return nil, err
	}
	return &cache.Parameter{
		Name:         name,
		Value:        resp.Value,
		LastModified: resp.LastModified,
		Version:      resp.Version,
	}, nil
}

func (c *Client) PutParameter(ctx context.Context, in cache.PutParameterInput) (*cache.WriteAck, error) {
	resp, err := c.roundTrip(ctx, Request{
		Op:        OpPut,
		Name:      in.Name,
		Value:     in.Value,
		Type:      string(in.Type),
		Overwrite: in.Overwrite,
		KeyID:     in.KeyID,
	})
	if err != nil {
		return nil, err
	}
	return &cache.WriteAck{Version: resp.Version, Tier: resp.Tier}, nil
}

func (c *Client) DeleteParameter(ctx context.Context, name string) error {
	_, err := c.roundTrip(ctx, Request{Op: OpDelete, Name: name})
	return err
}

var _ cache.ParameterStore = (*Client)(nil)
