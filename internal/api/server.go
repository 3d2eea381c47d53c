// Package api provides the HTTP inspection surface over a running cluster:
// read-only snapshots of node membership plus the two operator actions
// (introduce two nodes, shut everything down).
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nodemesh/swimd/internal/app/router"
	"github.com/nodemesh/swimd/internal/domain"
	"github.com/nodemesh/swimd/internal/infra/observability"
)

// Server is the cluster's HTTP inspection API.
type Server struct {
	router         *router.Router
	tracer         *observability.Tracer
	metricsEnabled bool
	beforeScrape   func()
	startedAt      time.Time
}

// NewServer creates a Server driving rt. beforeScrape, if non-nil, runs
// immediately before every /metrics scrape (used to refresh gauges that
// have no push-on-change hook, such as member counts). tracer, if non-nil,
// backs /traces; a nil tracer makes /traces report an empty list.
func NewServer(rt *router.Router, tracer *observability.Tracer, metricsEnabled bool, beforeScrape func()) *Server {
	return &Server{router: rt, tracer: tracer, metricsEnabled: metricsEnabled, beforeScrape: beforeScrape, startedAt: time.Now()}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"uptime": humanize.Time(s.startedAt),
		})
	})

	r.Get("/nodes", s.handleListNodes)
	r.Get("/nodes/{host}", s.handleGetNode)
	r.Post("/nodes/{host}/hello/{target}", s.handleHello)
	r.Post("/shutdown", s.handleShutdown)
	r.Get("/traces", s.handleTraces)

	if s.metricsEnabled {
		r.Handle("/metrics", s.metricsHandler())
	}

	return r
}

func (s *Server) metricsHandler() http.Handler {
	inner := promhttp.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if s.beforeScrape != nil {
			s.beforeScrape()
		}
		inner.ServeHTTP(w, req)
	})
}

type nodeView struct {
	Host         string            `json:"host"`
	SelfLiveness string            `json:"self_liveness"`
	Members      map[string]string `json:"members"`
}

func toNodeView(snap domain.Snapshot) nodeView {
	members := make(map[string]string, len(snap.Members))
	for h, s := range snap.Members {
		members[h.String()] = s.String()
	}
	return nodeView{
		Host:         snap.Host.String(),
		SelfLiveness: snap.SelfLiveness.String(),
		Members:      members,
	}
}

func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	hosts := s.router.Hosts()
	views := make([]nodeView, 0, len(hosts))
	for _, h := range hosts {
		n, ok := s.router.Node(h)
		if !ok {
			continue
		}
		views = append(views, toNodeView(n.Snapshot()))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	host, err := parseHost(chi.URLParam(r, "host"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, ok := s.router.Node(host)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrUnknownHost.Error())
		return
	}
	writeJSON(w, http.StatusOK, toNodeView(n.Snapshot()))
}

func (s *Server) handleHello(w http.ResponseWriter, r *http.Request) {
	from, err := parseHost(chi.URLParam(r, "host"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseHost(chi.URLParam(r, "target"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.router.SendApplication(from, to)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "sent"})
}

func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	go s.router.Shutdown()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "shutting down"})
}

// handleTraces returns the most recently recorded spans, newest last. An
// optional ?limit= query param caps how many are returned.
func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	if s.tracer == nil {
		writeJSON(w, http.StatusOK, []observability.Span{})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.tracer.Spans(limit))
}

func parseHost(raw string) (domain.Host, error) {
	n, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		return 0, errors.New("host must be a small unsigned integer")
	}
	return domain.Host(n), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
			"type":    "error",
		},
	})
}
