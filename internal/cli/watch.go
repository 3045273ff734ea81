package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"botpanel/internal/conf"
	"botpanel/internal/logger"
	"botpanel/internal/loop"
	"botpanel/internal/netx"
	"botpanel/internal/render"
	"botpanel/internal/session"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Open the live metrics dashboard",
	Long: `Connect to the panel over socket.io and render its metrics live.

Keys: r refresh, c reconnect, q quit.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// sessionConfig maps the client config section onto a session config.
func sessionConfig(c conf.Client) session.Config {
	cfg := session.DefaultConfig()
	cfg.Dial = netx.DialOptions{
		URL:       c.URL,
		Path:      c.Path,
		Namespace: c.Namespace,
		Token:     c.Token,
		Timeout:   c.Timeout,
	}
	cfg.Attempts = c.Attempts
	cfg.Delay = c.Delay
	cfg.Timeout = c.Timeout
	cfg.PollInterval = c.PollInterval
	cfg.PageInterval = c.PageInterval
	cfg.RenderInterval = c.RenderInterval
	cfg.RefreshDelay = c.RefreshDelay
	cfg.PageSize = c.PageSize
	return cfg
}

// feedLine formats a new_message payload {type, data{timestamp, content}}.
func feedLine(message map[string]any) string {
	data := cast.ToStringMap(message["data"])
	line := cast.ToString(data["content"])
	if ts := cast.ToString(data["timestamp"]); ts != "" {
		line = "[" + ts + "] " + line
	}
	if t := cast.ToString(message["type"]); t != "" {
		line = t + " " + line
	}
	return line
}

func runWatch(cmd *cobra.Command, args []string) error {
	client := conf.GetClient()
	cfg := sessionConfig(client)

	// The standard logger would draw over the dashboard.
	if os.Getenv("PANEL_DEBUG") != "" {
		f, err := tea.LogToFile("panel-watch.log", "")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}
	slog := logger.NewEnvLogger("[watch]")

	board := render.NewBoard()
	l := loop.New()
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go l.Run(ctx)

	s := session.New(l, netx.Dial, board, cfg, session.Collaborators{
		Status: func(st session.Status) {
			board.SetStatus(st.Text, st.State == session.Connected)
		},
		NewMessage: func(message map[string]any) {
			board.AppendFeed(feedLine(message))
		},
	}, slog)
	l.Post(s.Start)

	api := netx.NewAPIClient(client.URL, client.Token)
	go func() {
		info, err := api.RobotInfo(ctx)
		if err != nil {
			slog.Warn("robot info: %v", err)
			return
		}
		board.SetRobot(info.Name)
	}()

	model := render.NewModel(board, cfg.RenderInterval, render.Actions{
		Refresh:   func() { l.Post(s.Refresh) },
		Reconnect: func() { l.Post(s.Reconnect) },
	})
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()

	l.Sync(s.Close)
	l.Close()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("dashboard: %w", err)
	}
	return nil
}
