package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/fmtx/pkg/l1"
	"github.com/robotalks/fmtx/pkg/l1/comm"
)

// Connector implements l1.Connector against a single Server.
type Connector struct {
	// BaseURL is like ws://host:port.
	BaseURL *url.URL
}

// NewConnector creates a Connector.
func NewConnector(baseURL string) (*Connector, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("unsupported websocket scheme %q", u.Scheme)
	}
	return &Connector{BaseURL: u}, nil
}

func (c *Connector) urlOf(scheme, path string) string {
	u := *c.BaseURL
	u.Scheme, u.Path = scheme, path
	return u.String()
}

// Discover implements l1.Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.DeviceInfo, error) {
	scheme := "http"
	if c.BaseURL.Scheme == "wss" {
		scheme = "https"
	}
	req, err := http.NewRequest(http.MethodGet, c.urlOf(scheme, PathMeta), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discover: %s", resp.Status)
	}
	var info l1.DeviceInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	return []l1.DeviceInfo{info}, nil
}

// Connect implements l1.Connector. ref is not checked as the server
// exposes exactly one device.
func (c *Connector) Connect(ctx context.Context, ref l1.DeviceRef) (l1.DeviceConn, error) {
	origin := c.urlOf("http", "/")
	ws, err := websocket.Dial(c.urlOf(c.BaseURL.Scheme, PathConnect), "", origin)
	if err != nil {
		return nil, err
	}
	ws.PayloadType = websocket.BinaryFrame
	conn := &DeviceConn{}
	conn.Init(New(ws))
	return conn, nil
}

// DeviceConn is a DeviceConn over websocket.
type DeviceConn struct {
	comm.DeviceConn
}
