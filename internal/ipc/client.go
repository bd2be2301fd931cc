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

// Start requests the daemon to start processing.
func (c *Client) Start() (*StartResponse, error) {
	var resp StartResponse
	if err := c.client.Call("Packwright.Start", StartRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stop requests the daemon to stop processing.
func (c *Client) Stop() (*StopResponse, error) {
	var resp StopResponse
	if err := c.client.Call("Packwright.Stop", StopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Packwright.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunStart enqueues a packaging run for a named folder.
func (c *Client) RunStart(folder string) (*RunStartResponse, error) {
	var resp RunStartResponse
	if err := c.client.Call("Packwright.RunStart", RunStartRequest{Folder: folder}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunList returns runs optionally filtered by statuses.
func (c *Client) RunList(statuses []string) (*RunListResponse, error) {
	var resp RunListResponse
	if err := c.client.Call("Packwright.RunList", RunListRequest{Statuses: statuses}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunDescribe returns details for a single run.
func (c *Client) RunDescribe(id string) (*RunDescribeResponse, error) {
	var resp RunDescribeResponse
	if err := c.client.Call("Packwright.RunDescribe", RunDescribeRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunDecide answers a pending approval on a suspended run.
func (c *Client) RunDecide(id, optionID string) (*RunDecideResponse, error) {
	var resp RunDecideResponse
	if err := c.client.Call("Packwright.RunDecide", RunDecideRequest{ID: id, OptionID: optionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunCancel cancels a suspended run.
func (c *Client) RunCancel(id string) (*RunCancelResponse, error) {
	var resp RunCancelResponse
	if err := c.client.Call("Packwright.RunCancel", RunCancelRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunClearCompleted removes completed runs.
func (c *Client) RunClearCompleted() (*RunClearCompletedResponse, error) {
	var resp RunClearCompletedResponse
	if err := c.client.Call("Packwright.RunClearCompleted", RunClearCompletedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunClearFailed removes failed runs.
func (c *Client) RunClearFailed() (*RunClearFailedResponse, error) {
	var resp RunClearFailedResponse
	if err := c.client.Call("Packwright.RunClearFailed", RunClearFailedRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunReset rolls in-flight runs back to their phase start.
func (c *Client) RunReset() (*RunResetResponse, error) {
	var resp RunResetResponse
	if err := c.client.Call("Packwright.RunReset", RunResetRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunRetry retries failed runs.
func (c *Client) RunRetry(ids []string) (*RunRetryResponse, error) {
	var resp RunRetryResponse
	if err := c.client.Call("Packwright.RunRetry", RunRetryRequest{IDs: ids}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RunHealth returns aggregate run diagnostics.
func (c *Client) RunHealth() (*RunHealthResponse, error) {
	var resp RunHealthResponse
	if err := c.client.Call("Packwright.RunHealth", RunHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DatabaseHealth retrieves detailed database diagnostics.
func (c *Client) DatabaseHealth() (*DatabaseHealthResponse, error) {
	var resp DatabaseHealthResponse
	if err := c.client.Call("Packwright.DatabaseHealth", DatabaseHealthRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// LogTail returns log lines from the daemon.
func (c *Client) LogTail(req LogTailRequest) (*LogTailResponse, error) {
	var resp LogTailResponse
	if err := c.client.Call("Packwright.LogTail", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Packwright.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
