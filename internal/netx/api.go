package netx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"botpanel/internal/errors"
)

// URLPrefix is the mount point of the panel on the bot's HTTP server.
const URLPrefix = "/web"

// RobotInfo is the payload of /web/api/robot_info.
type RobotInfo struct {
	Success          bool   `json:"success"`
	Error            string `json:"error,omitempty"`
	QQ               string `json:"qq"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Avatar           string `json:"avatar"`
	Developer        string `json:"developer"`
	Link             string `json:"link"`
	Status           string `json:"status"`
	ConnectionType   string `json:"connection_type"`
	ConnectionStatus string `json:"connection_status"`
	DataSource       string `json:"data_source"`
	QRCodeAPI        string `json:"qr_code_api,omitempty"`
}

// BuildURL prefixes endpoint with /web and appends the access token.
func BuildURL(endpoint, token string) string {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	if !strings.HasPrefix(endpoint, URLPrefix+"/") {
		endpoint = URLPrefix + endpoint
	}
	separator := "?"
	if strings.Contains(endpoint, "?") {
		separator = "&"
	}
	return endpoint + separator + "token=" + url.QueryEscape(token)
}

// APIClient calls the panel's HTTP endpoints.
type APIClient struct {
	base  string
	token string
	http  *http.Client
}

// NewAPIClient creates a client for the panel served at base, e.g.
// "http://127.0.0.1:5001".
func NewAPIClient(base, token string) *APIClient {
	return &APIClient{
		base:  strings.TrimRight(base, "/"),
		token: token,
		http:  &http.Client{Timeout: 30 * time.Second},
	}
}

// URL returns the absolute, token-carrying URL of endpoint.
func (c *APIClient) URL(endpoint string) string {
	return c.base + BuildURL(endpoint, c.token)
}

func (c *APIClient) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(endpoint), nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrHTTP, "failed to build request", "")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrHTTP,
			fmt.Sprintf("GET %s failed", endpoint),
			"Check that the panel is running and the URL is correct")
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		return nil, errors.New(errors.ErrAuth, "access token rejected",
			"Pass a valid token with --token or PANEL_TOKEN")
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, errors.New(errors.ErrHTTP,
			fmt.Sprintf("GET %s returned %s", endpoint, resp.Status), "")
	}
	return resp, nil
}

// RobotInfo fetches the bot's profile.
func (c *APIClient) RobotInfo(ctx context.Context) (RobotInfo, error) {
	var info RobotInfo
	resp, err := c.get(ctx, "/api/robot_info")
	if err != nil {
		return info, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, errors.WrapWithCode(err, errors.ErrHTTP, "robot info is not valid JSON", "")
	}
	return info, nil
}

// ExportLogs downloads the log archive into w and returns the byte count.
func (c *APIClient) ExportLogs(ctx context.Context, w io.Writer) (int64, error) {
	resp, err := c.get(ctx, "/api/export_logs")
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, errors.WrapWithCode(err, errors.ErrHTTP, "log export interrupted", "")
	}
	return n, nil
}

// QRCodeURL returns the URL of the bot's share QR code, or "" when the bot
// has neither a QR API nor a link.
func (c *APIClient) QRCodeURL(info RobotInfo) string {
	switch {
	case info.QRCodeAPI != "":
		return c.URL(info.QRCodeAPI)
	case info.Link != "":
		return c.URL("/api/robot_qrcode?url=" + url.QueryEscape(info.Link))
	}
	return ""
}
