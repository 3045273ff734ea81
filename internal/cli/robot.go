package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"botpanel/internal/conf"
	"botpanel/internal/errors"
	"botpanel/internal/netx"
	"botpanel/internal/render"
)

var exportOutput string

// requestTimeout bounds one-shot HTTP commands.
const requestTimeout = 30 * time.Second

var robotCmd = &cobra.Command{
	Use:   "robot",
	Short: "Show the robot profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		info, err := apiClient().RobotInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatRobot(info))
		return nil
	},
}

var exportLogsCmd = &cobra.Command{
	Use:   "export-logs",
	Short: "Download the log archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := exportOutput
		if path == "" {
			path = "logs_" + time.Now().Format("20060102_150405") + ".zip"
		}
		f, err := os.Create(path)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrHTTP, "failed to create "+path, "")
		}
		defer f.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		n, err := apiClient().ExportLogs(ctx, f)
		if err != nil {
			os.Remove(path)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, n)
		return nil
	},
}

var qrcodeURLCmd = &cobra.Command{
	Use:   "qrcode-url",
	Short: "Print the URL of the robot's share QR code",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()
		client := apiClient()
		info, err := client.RobotInfo(ctx)
		if err != nil {
			return err
		}
		u := client.QRCodeURL(info)
		if u == "" {
			return errors.New(errors.ErrHTTP, "robot has no share link",
				"Set [Robot] Link or QRCodeAPI in the panel config")
		}
		fmt.Fprintln(cmd.OutOrStdout(), u)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(robotCmd, exportLogsCmd, qrcodeURLCmd)
	exportLogsCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "archive path (default logs_<time>.zip)")
}

func apiClient() *netx.APIClient {
	c := conf.GetClient()
	return netx.NewAPIClient(c.URL, c.Token)
}

func formatRobot(info netx.RobotInfo) string {
	rows := [][2]string{
		{"QQ", info.QQ},
		{"简介", info.Description},
		{"开发者", info.Developer},
		{"状态", info.ConnectionStatus},
		{"连接", info.ConnectionType},
		{"链接", info.Link},
	}
	label := render.LabelStyle.Width(8)
	out := render.TitleStyle.Render(info.Name)
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		out = lipgloss.JoinVertical(lipgloss.Left, out,
			lipgloss.JoinHorizontal(lipgloss.Top, label.Render(r[0]), render.ValueStyle.Render(r[1])))
	}
	return out
}
