package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"botpanel/internal/conf"
	"botpanel/internal/errors"
	"botpanel/internal/logbook"
	"botpanel/internal/logger"
	"botpanel/internal/netx"
	"botpanel/internal/system"
	"botpanel/internal/web"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the panel backend",
	Long: `Start the socket.io backend dashboards connect to, plus the HTTP API
under /web/api. Logs go to memory, or to sqlite when [Server] LogDB is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (overrides config)")
}

// openBook opens the log store configured for server.
func openBook(server conf.Server) (*logbook.Book, error) {
	if server.LogDB == "" {
		return logbook.New(logbook.NewMemory(server.LogLimit)), nil
	}
	db, err := logbook.NewSQLite(server.LogDB, server.LogLimit)
	if err != nil {
		return nil, err
	}
	return logbook.New(db), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	server := conf.GetServer()
	if serveListen != "" {
		server.Listen = serveListen
	}

	book, err := openBook(server)
	if err != nil {
		return err
	}
	defer book.Close()
	log := logger.Tee(logger.NewEnvLogger("[serve]"), book.Sink())

	backend := web.New(web.Options{
		Server:    server,
		Collector: system.NewCollector(time.Now(), server.Root, log),
		Book:      book,
		Status:    func() string { return "运行中" },
		Log:       log,
	})
	defer backend.Close()

	srv := &http.Server{
		Addr:              server.Listen,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.Info("面板已启动: http://%s%s", server.Listen, netx.URLPrefix)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.WrapWithCode(err, errors.ErrHTTP, "failed to listen on "+server.Listen,
				"Pick another address with --listen or [Server] Listen")
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("面板正在关闭")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
