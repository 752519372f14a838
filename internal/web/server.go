package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"latency-monitor/internal/models"
)

const (
	defaultWindow = 50
	pushInterval  = 500 * time.Millisecond
)

// LiveSource provides read-only snapshots of the running probe loops
type LiveSource interface {
	Snapshot(k int) []models.TargetSnapshot
}

// History provides stored runs. It is optional.
type History interface {
	ListRuns(limit int) ([]models.Run, error)
	GetIntervals(runID, target string) ([]models.Interval, error)
}

// Server handles web requests
type Server struct {
	addr      string
	live      LiveSource
	history   History
	log       *logrus.Entry
	pushEvery time.Duration
}

// New creates a new web server. history may be nil.
func New(addr string, live LiveSource, history History, log *logrus.Entry) *Server {
	return &Server{
		addr:      addr,
		live:      live,
		history:   history,
		log:       log.WithField("component", "web"),
		pushEvery: pushInterval,
	}
}

// Handler returns the routed API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/live", s.handleLive)
	mux.HandleFunc("GET /api/live/ws", s.handleLiveStream)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/runs/{id}/intervals", s.handleIntervals)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.addr).Info("Web server starting")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("Web server stopped")
	return nil
}
