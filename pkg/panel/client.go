package panel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wolfhost/botpanel-backend/internal/consts"
	"github.com/wolfhost/botpanel-backend/pkg/domain/errs"
)

// ServerState is the hosting panel's own status vocabulary.
type ServerState string

const (
	StateInstalling ServerState = "installing"
	StateRunning    ServerState = "running"
	StateSuspended  ServerState = "suspended"
	StateOffline    ServerState = "offline"
)

// Config holds the externally supplied panel connection settings and
// resource-sizing defaults for created servers.
type Config struct {
	BaseURL  string
	APIKey   string
	MemoryMB int
	DiskMB   int
	CPULimit int
}

// Client talks to the hosting panel's application API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.MemoryMB == 0 {
		cfg.MemoryMB = 512
	}
	if cfg.DiskMB == 0 {
		cfg.DiskMB = 1024
	}
	if cfg.CPULimit == 0 {
		cfg.CPULimit = 100
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Configured reports whether the panel can be used at all. Checked before
// any call is attempted so misconfiguration fails fast.
func (c *Client) Configured() error {
	if c == nil || c.cfg.BaseURL == "" || c.cfg.APIKey == "" {
		return &errs.BackendUnavailableError{Reason: "PANEL_URL or PANEL_API_KEY not configured"}
	}
	return nil
}

// Server is the panel's view of one provisioned bot server.
type Server struct {
	ID         int         `json:"id"`
	Identifier string      `json:"identifier"`
	Name       string      `json:"name"`
	State      ServerState `json:"status"`
}

// PanelURL returns the user-facing console URL for this server.
func (c *Client) PanelURL(s *Server) string {
	return fmt.Sprintf("%s/server/%s", c.cfg.BaseURL, s.Identifier)
}

type CreateServerInput struct {
	Name    string
	RepoURL string
	Env     map[string]string
}

type serverEnvelope struct {
	Attributes Server `json:"attributes"`
}

// CreateServer provisions a container-backed server for the bot, passing the
// repository URL and resolved configuration as environment variables.
func (c *Client) CreateServer(ctx context.Context, input CreateServerInput) (*Server, error) {
	if err := c.Configured(); err != nil {
		return nil, err
	}

	env := map[string]string{"REPO_URL": input.RepoURL}
	for k, v := range input.Env {
		env[k] = v
	}
	payload := map[string]interface{}{
		"name":        input.Name,
		"environment": env,
		"limits": map[string]int{
			"memory": c.cfg.MemoryMB,
			"disk":   c.cfg.DiskMB,
			"cpu":    c.cfg.CPULimit,
		},
	}

	var envelope serverEnvelope
	if err := c.do(ctx, http.MethodPost, "/api/application/servers", payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Attributes, nil
}

// GetServer fetches the server's current state.
func (c *Client) GetServer(ctx context.Context, id int) (*Server, error) {
	if err := c.Configured(); err != nil {
		return nil, err
	}
	var envelope serverEnvelope
	path := fmt.Sprintf("/api/application/servers/%d", id)
	if err := c.do(ctx, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Attributes, nil
}

// DeleteServer force-deletes the server. A 404 means the resource is already
// gone and is treated as success.
func (c *Client) DeleteServer(ctx context.Context, id int) error {
	if err := c.Configured(); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/application/servers/%d/force", id)
	err := c.do(ctx, http.MethodDelete, path, nil, nil)
	var apiErr *errs.PanelAPIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return nil
	}
	return err
}

// ReinstallServer re-runs the server's install process.
func (c *Client) ReinstallServer(ctx context.Context, id int) error {
	if err := c.Configured(); err != nil {
		return err
	}
	path := fmt.Sprintf("/api/application/servers/%d/reinstall", id)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &errs.BackendUnavailableError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, consts.PanelErrorBodyLimit))
		return &errs.PanelAPIError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode panel response: %w", err)
		}
	}
	return nil
}
