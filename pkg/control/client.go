// Package control talks to the analyzer server's REST control surface:
// status polling, capture start/stop, device discovery, and the stream
// rate setting.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zmk5566/Crowd-Sonic/pkg/logging"
)

// DefaultTimeout bounds every control request. Control calls are small
// request/response exchanges, unlike the long-lived frame stream.
const DefaultTimeout = 10 * time.Second

// FPS bounds accepted by the server.
const (
	MinFPS = 5
	MaxFPS = 60
)

// SystemStatus mirrors the server's /api/status response.
type SystemStatus struct {
	IsRunning        bool    `json:"is_running"`
	CurrentFPS       float64 `json:"current_fps"`
	ConnectedClients int     `json:"connected_clients"`
	TotalFramesSent  int64   `json:"total_frames_sent"`
	TotalBytesSent   int64   `json:"total_bytes_sent"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	AudioDeviceName  string  `json:"audio_device_name"`
	LastError        string  `json:"last_error"`
}

// CommandResult is the server's acknowledgement for start/stop/config calls.
type CommandResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// OK reports whether the server accepted the command.
func (r *CommandResult) OK() bool {
	return r.Status == "success"
}

// Device describes one capture device reported by /api/devices.
type Device struct {
	ID                int     `json:"id"`
	Name              string  `json:"name"`
	MaxChannels       int     `json:"max_channels"`
	DefaultSampleRate float64 `json:"default_samplerate"`
	IsDefault         bool    `json:"is_default"`
}

type deviceListResponse struct {
	Devices []Device `json:"devices"`
}

// Client is a thin REST client for one analyzer server.
type Client struct {
	baseURL string
	client  *http.Client
	logger  logging.Logger
}

// NewClient creates a control client for the given server base URL.
func NewClient(baseURL string) *Client {
	return NewClientWithHTTP(baseURL, &http.Client{Timeout: DefaultTimeout})
}

// NewClientWithHTTP creates a control client using the provided HTTP client.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: baseURL,
		client:  httpClient,
		logger: logging.WithFields(logging.Fields{
			"component": "control_client",
			"server":    baseURL,
		}),
	}
}

// Status fetches the server's current system status.
func (c *Client) Status(ctx context.Context) (*SystemStatus, error) {
	var status SystemStatus
	if err := c.get(ctx, "/api/status", &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Start asks the server to begin capture and streaming.
func (c *Client) Start(ctx context.Context) (*CommandResult, error) {
	return c.command(ctx, "/api/start", nil)
}

// Stop asks the server to halt capture and streaming.
func (c *Client) Stop(ctx context.Context) (*CommandResult, error) {
	return c.command(ctx, "/api/stop", nil)
}

// Devices lists the server's available capture devices.
func (c *Client) Devices(ctx context.Context) ([]Device, error) {
	var resp deviceListResponse
	if err := c.get(ctx, "/api/devices", &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// SetFPS changes the server's target frame rate. The body is a bare JSON
// integer, which is what the server expects on this endpoint.
func (c *Client) SetFPS(ctx context.Context, fps int) (*CommandResult, error) {
	if fps < MinFPS || fps > MaxFPS {
		return nil, fmt.Errorf("fps %d out of range [%d, %d]", fps, MinFPS, MaxFPS)
	}
	c.logger.Debug("Setting target FPS", logging.Fields{"fps": fps})
	return c.command(ctx, "/api/config/fps", fps)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	return c.do(req, out)
}

// command issues a POST and decodes the server's acknowledgement. A nil
// body sends an empty request.
func (c *Client) command(ctx context.Context, path string, body any) (*CommandResult, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body for %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var result CommandResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	if !result.OK() {
		return &result, fmt.Errorf("server rejected %s: %s", path, result.Message)
	}
	return &result, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request to %s failed: HTTP %d: %s",
			req.URL.Path, resp.StatusCode, string(bytes.TrimSpace(body)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response from %s: %w", req.URL.Path, err)
		}
	}
	return nil
}
