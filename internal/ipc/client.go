package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Curator.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncAll requests a sync pass over every collection.
func (c *Client) SyncAll() (*SyncResponse, error) {
	var resp SyncResponse
	if err := c.client.Call("Curator.SyncAll", SyncAllRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SyncCollection requests a sync pass for a single collection.
func (c *Client) SyncCollection(collectionID string) (*SyncResponse, error) {
	var resp SyncResponse
	req := SyncCollectionRequest{CollectionID: collectionID}
	if err := c.client.Call("Curator.SyncCollection", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// History lists recent sync runs.
func (c *Client) History(limit int) (*HistoryResponse, error) {
	var resp HistoryResponse
	req := HistoryRequest{Limit: limit}
	if err := c.client.Call("Curator.History", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunCollections fetches per-collection results for a run.
func (c *Client) RunCollections(runID string) (*RunCollectionsResponse, error) {
	var resp RunCollectionsResponse
	req := RunCollectionsRequest{RunID: runID}
	if err := c.client.Call("Curator.RunCollections", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Collections lists library collections and their sync rules.
func (c *Client) Collections() (*CollectionsResponse, error) {
	var resp CollectionsResponse
	if err := c.client.Call("Curator.Collections", CollectionsRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Curator.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Curator.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
