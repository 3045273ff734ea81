package web

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"botpanel/internal/auth"
	"botpanel/internal/conf"
	"botpanel/internal/netx"
)

// Handler returns the HTTP handler serving socket.io and the panel API.
func (b *Backend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	path := b.cfg.Path
	if path == "" {
		path = netx.DefaultPath
	}
	r.Handle(strings.TrimRight(path, "/")+"/*", b.io.Handler())

	r.Route(netx.URLPrefix+"/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Use(auth.RequireToken)
		r.Get("/robot_info", b.handleRobotInfo)
		r.Get("/export_logs", b.handleExportLogs)
		r.Get("/robot_qrcode", b.handleRobotQRCode)
	})
	return r
}

// RobotInfo reports the configured robot profile and bot status.
func (b *Backend) RobotInfo() netx.RobotInfo {
	robot := conf.GetRobot()
	status := b.status()
	avatar := robot.Avatar
	if avatar == "" && robot.QQ != "" {
		avatar = "http://q1.qlogo.cn/g?b=qq&nk=" + url.QueryEscape(robot.QQ) + "&s=100"
	}
	return netx.RobotInfo{
		Success:          true,
		QQ:               robot.QQ,
		Name:             robot.Name,
		Description:      robot.Description,
		Avatar:           avatar,
		Developer:        robot.Developer,
		Link:             robot.Link,
		Status:           status,
		ConnectionType:   "OneBot WebSocket",
		ConnectionStatus: status,
		DataSource:       "config",
		QRCodeAPI:        robot.QRCodeAPI,
	}
}

func (b *Backend) handleRobotInfo(w http.ResponseWriter, r *http.Request) {
	_ = netx.WriteJSON(w, http.StatusOK, b.RobotInfo())
}

func (b *Backend) handleExportLogs(w http.ResponseWriter, r *http.Request) {
	name := "logs_" + time.Now().Format("20060102_150405") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := b.book.Export(w); err != nil {
		b.log.Error("导出日志失败: %v", err)
	}
}

func (b *Backend) handleRobotQRCode(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		_ = netx.WriteBadRequest(w, "缺少URL参数")
		return
	}
	provider := conf.GetRobot().QRProvider
	if provider == "" {
		_ = netx.WriteNotImplemented(w, "no QR code provider configured")
		return
	}

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet,
		fmt.Sprintf(provider, url.QueryEscape(target)), nil)
	if err != nil {
		_ = netx.WriteInternalServerError(w, "bad QR code provider", err)
		return
	}
	resp, err := b.client.Do(req)
	if err != nil {
		_ = netx.WriteInternalServerError(w, "QR code provider unreachable", err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		_ = netx.WriteInternalServerError(w, "QR code provider returned "+resp.Status, nil)
		return
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := io.Copy(w, resp.Body); err != nil {
		b.log.Debug("qrcode copy: %v", err)
	}
}
