package cli

import (
	"bytes"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botpanel/internal/auth"
	"botpanel/internal/conf"
	"botpanel/internal/logbook"
	"botpanel/internal/system"
	"botpanel/internal/web"
)

type harness struct {
	dir    string
	config string
}

func newHarness(t *testing.T, config string) *harness {
	t.Helper()
	t.Setenv(conf.EnvToken, "")
	t.Setenv(conf.EnvURL, "")
	h := &harness{dir: t.TempDir()}
	h.config = filepath.Join(h.dir, "panel.toml")
	require.NoError(t, os.WriteFile(h.config, []byte(config), 0644))
	t.Cleanup(func() {
		conf.Conf = conf.Default()
		conf.Path = ""
		auth.Validated.Forget()
	})
	return h
}

func (h *harness) run(t *testing.T, url, token string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(append([]string{
		"--config", h.config,
		"--env", filepath.Join(h.dir, "missing.env"),
		"--url", url,
		"--token", token,
	}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestTokenCommands(t *testing.T) {
	h := newHarness(t, "")

	out, err := h.run(t, "", "", "token", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "panel is open")

	out, err = h.run(t, "", "", "token", "add", "ci")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	assert.Len(t, token, 64)

	saved, err := os.ReadFile(h.config)
	require.NoError(t, err)
	assert.Contains(t, string(saved), "ci")
	assert.NotContains(t, string(saved), token)

	out, err = h.run(t, "", "", "token", "list")
	require.NoError(t, err)
	assert.Equal(t, "ci\n", out)

	_, err = h.run(t, "", "", "token", "remove", "--yes", "ci")
	require.NoError(t, err)
	assert.Empty(t, conf.GetTokens())

	_, err = h.run(t, "", "", "token", "remove", "--yes", "ci")
	assert.Error(t, err)
}

func TestFlagsOverrideConfig(t *testing.T) {
	h := newHarness(t, "[Client]\nURL = \"http://from-file:1\"\nToken = \"file\"\n")

	_, err := h.run(t, "http://from-flag:2", "", "token", "list")
	require.NoError(t, err)
	assert.Equal(t, "http://from-flag:2", conf.GetClient().URL)
	assert.Equal(t, "file", conf.GetClient().Token)
}

func TestRobotCommandsAgainstBackend(t *testing.T) {
	h := newHarness(t, `
[Robot]
Name = "Elaina"
QQ = "10001"
Link = "https://example.com/bot"
`)
	// Load once so the backend sees the robot profile.
	require.NoError(t, conf.LoadConfig(h.config))

	book := logbook.New(logbook.NewMemory(0))
	_, err := book.Add(logbook.Framework, "started")
	require.NoError(t, err)
	backend := web.New(web.Options{
		Server:    conf.GetServer(),
		Collector: system.NewCollector(time.Now(), h.dir, nil),
		Book:      book,
	})
	defer backend.Close()
	srv := httptest.NewServer(backend.Handler())
	defer srv.Close()

	out, err := h.run(t, srv.URL, "", "robot")
	require.NoError(t, err)
	assert.Contains(t, out, "Elaina")
	assert.Contains(t, out, "10001")

	out, err = h.run(t, srv.URL, "", "qrcode-url")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/web/api/robot_qrcode?url=https%3A%2F%2Fexample.com%2Fbot&token=\n", out)

	archive := filepath.Join(h.dir, "logs.zip")
	out, err = h.run(t, srv.URL, "", "export-logs", "-o", archive)
	require.NoError(t, err)
	assert.Contains(t, out, "Saved "+archive)
	info, err := os.Stat(archive)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestSessionConfigFromClient(t *testing.T) {
	c := conf.Default().Client
	c.URL = "http://bot:5001"
	c.Token = "secret"
	c.PageInterval = 0
	c.Attempts = 3

	cfg := sessionConfig(c)
	assert.Equal(t, "http://bot:5001", cfg.Dial.URL)
	assert.Equal(t, "secret", cfg.Dial.Token)
	assert.Equal(t, "/web", cfg.Dial.Namespace)
	assert.Equal(t, "/web/socket.io", cfg.Dial.Path)
	assert.Equal(t, 3, cfg.Attempts)
	assert.Equal(t, time.Duration(0), cfg.PageInterval)
	assert.Equal(t, 5*time.Second, cfg.PollInterval)
	assert.Equal(t, 20, cfg.PageSize)
}

func TestFeedLine(t *testing.T) {
	assert.Equal(t, "received [2026-01-02 03:04:05] hello", feedLine(map[string]any{
		"type": "received",
		"data": map[string]any{"timestamp": "2026-01-02 03:04:05", "content": "hello"},
	}))
	assert.Equal(t, "bare", feedLine(map[string]any{"data": map[string]any{"content": "bare"}}))
}
