package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"virtual-env-server/internal/browser"
	"virtual-env-server/internal/config"
	"virtual-env-server/internal/handler"
	"virtual-env-server/internal/metrics"
	"virtual-env-server/internal/repository"
	"virtual-env-server/internal/server"
	"virtual-env-server/internal/service"

	"github.com/sirupsen/logrus"
)

// webServer wires the static handler, the optional access-log store and
// the listener, and drives them through startup and shutdown.
type webServer struct {
	cfg      config.Config
	out      io.Writer
	logger   *logrus.Logger
	launcher browser.Launcher
	metrics  *metrics.Metrics

	srv      *server.Server
	repo     repository.RequestRepository
	recorder *service.RecorderService
	recDone  chan error
}

func newWebServer(cfg config.Config, out io.Writer, logger *logrus.Logger, launcher browser.Launcher) *webServer {
	return &webServer{
		cfg:      cfg,
		out:      out,
		logger:   logger,
		launcher: launcher,
		metrics:  metrics.NewMetrics(),
	}
}

// Start binds the listener, prints the banner and tries to open a
// browser. Only a failure to bind (or to open the access-log store) is
// returned; the browser launch never fails startup.
func (w *webServer) Start(ctx context.Context) error {
	var recorder handler.Recorder
	if w.cfg.AccessDB != "" {
		repo, err := repository.NewSQLiteRepository(w.cfg.AccessDB)
		if err != nil {
			return fmt.Errorf("failed to initialize access log: %w", err)
		}
		w.repo = repo
		w.recorder = service.NewRecorderService(repo, w.metrics, w.logger, service.DefaultQueueSize)
		w.recDone = make(chan error, 1)
		go func() {
			w.recDone <- w.recorder.Run(context.Background())
		}()
		recorder = w.recorder
	}

	static := handler.NewStatic(w.cfg.Root, handler.WithLanding(w.cfg.Landing))
	var h http.Handler = handler.NewAccessLogHandler(static, w.metrics, w.logger, recorder)

	w.srv = server.New(w.cfg, h, w.logger)
	if err := w.srv.Listen(ctx); err != nil {
		w.closeAccessLog()
		return err
	}

	url := w.srv.URL()
	fmt.Fprintf(w.out, "Virtual environment server starting on port %d\n", w.srv.Port())
	fmt.Fprintf(w.out, "Server running at %s\n", url)

	if w.cfg.OpenBrowser {
		fmt.Fprintln(w.out, "Opening browser...")
		res := browser.Launch(w.launcher, url)
		if !res.Opened {
			w.logger.WithError(res.Err).Warn("could not open browser")
			fmt.Fprintln(w.out, "Warning: could not open browser automatically")
			fmt.Fprintf(w.out, "   Please manually open: %s\n", url)
		}
	} else {
		fmt.Fprintf(w.out, "Open %s in your browser\n", url)
	}

	fmt.Fprintln(w.out, "\nPress Ctrl+C to stop the server")
	return nil
}

// Wait serves until ctx is cancelled, then stops the listener, flushes
// the access log and prints the shutdown message.
func (w *webServer) Wait(ctx context.Context) error {
	if w.srv == nil {
		return server.ErrNotListening
	}

	err := w.srv.Run(ctx)
	w.closeAccessLog()

	w.logger.WithFields(snapshotFields(w.metrics)).Info("server stopped")
	fmt.Fprintln(w.out, "\nServer stopped")
	return err
}

func (w *webServer) closeAccessLog() {
	if w.recorder != nil {
		w.recorder.Close()
		if err := <-w.recDone; err != nil && !errors.Is(err, context.Canceled) {
			w.logger.WithError(err).Warn("error flushing access log")
		}
		w.recorder = nil
	}
	if w.repo != nil {
		if err := w.repo.Close(); err != nil {
			w.logger.WithError(err).Warn("error closing access log")
		}
		w.repo = nil
	}
}

func snapshotFields(m *metrics.Metrics) logrus.Fields {
	fields := logrus.Fields{}
	for k, v := range m.GetSnapshot() {
		fields[k] = v
	}
	return fields
}
