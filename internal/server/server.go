// Package server wires the conversion pipeline behind a single HTTP
// endpoint, plus health and metrics routes.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"audioconvert/internal/config"
	"audioconvert/internal/converter"
	"audioconvert/internal/download"
	"audioconvert/internal/locator"
)

// Server is the HTTP front of the service.
type Server struct {
	httpServer *http.Server
	log        *logrus.Logger
}

// New assembles the pipeline, handler, and router from config.
func New(cfg *config.Config, log *logrus.Logger) *Server {
	loc := locator.New(cfg.BinDirs)

	service := &converter.Service{
		Log:          log,
		HTTP:         download.NewHTTPClient(),
		Runner:       converter.ExecRunner{},
		Locator:      loc,
		TempDir:      cfg.TempDir,
		DownloadCap:  cfg.DownloadCapBytes,
		TotalBudget:  cfg.TotalBudget(),
		SafetyMargin: cfg.SafetyMargin(),
		MinDownload:  cfg.MinDownload(),
		ProbeTimeout: cfg.ProbeTimeout(),
		AttemptCap:   cfg.AttemptCap(),
		MinAttempt:   cfg.MinAttempt(),
	}

	registry := prometheus.NewRegistry()
	handler := &Handler{
		Log:          log,
		Secret:       cfg.AuthSecret,
		Pipeline:     service,
		Metrics:      NewMetrics(registry),
		Locator:      loc,
		ProbeTimeout: cfg.ProbeTimeout(),
	}

	r := mux.NewRouter()
	r.Use(LoggingMiddleware(log))
	r.HandleFunc("/convert", handler.Convert).Methods(http.MethodPost)
	r.HandleFunc("/healthz", handler.Healthz).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{
			Addr:    cfg.ListenAddr,
			Handler: r,
			// Reads are cheap; writes carry the whole audio payload and
			// must outlast the conversion budget.
			ReadHeaderTimeout: 5 * time.Second,
			WriteTimeout:      cfg.TotalBudget() + 10*time.Second,
		},
		log: log,
	}
}

// Start blocks serving requests until Shutdown or a listener error.
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
