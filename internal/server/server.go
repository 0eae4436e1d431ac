// Package server exposes the scoring pipeline over HTTP and WebSocket.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/candelahq/candela/internal/aggregate"
	"github.com/candelahq/candela/internal/audit"
	"github.com/candelahq/candela/internal/ingest"
	"github.com/candelahq/candela/internal/logging"
	"github.com/candelahq/candela/internal/pagecontext"
	"github.com/candelahq/candela/internal/report"
	"github.com/candelahq/candela/internal/tracker"
)

// Server is the HTTP + WebSocket API surface for Candela.
type Server struct {
	cfg          Config
	orchestrator *audit.Orchestrator
	router       chi.Router
	upgrader     websocket.Upgrader
	logger       logging.Logger
	trk          *tracker.SQLiteTracker
}

// NewServer creates a Server with its own orchestrator and tracker.
func NewServer(cfg Config) (*Server, error) {
	if cfg.AppConfig == nil {
		cfg.AppConfig = audit.DefaultConfig()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("Server")
	}

	pagecontext.RegisterDefaultBackends()

	trk, err := tracker.NewSQLiteTracker(cfg.AppConfig.Storage, logger)
	if err != nil {
		return nil, err
	}

	orch, err := audit.NewOrchestrator(cfg.AppConfig, trk, logger)
	if err != nil {
		trk.Close()
		return nil, err
	}

	s := &Server{
		cfg:          cfg,
		orchestrator: orch,
		router:       chi.NewRouter(),
		logger:       logger,
		trk:          trk,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// TODO: tighten for production
				return true
			},
		},
	}

	s.routes()
	return s, nil
}

// Orchestrator returns the underlying orchestrator for advanced use (tests, etc.).
func (s *Server) Orchestrator() *audit.Orchestrator {
	return s.orchestrator
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Options("/audits", s.optionsHandler("GET, POST"))
	r.Options("/audits/{auditID}", s.optionsHandler("GET"))
	r.Options("/audits/{auditID}/violations", s.optionsHandler("GET"))
	r.Options("/audits/{auditID}/summary", s.optionsHandler("GET"))
	r.Options("/audits/{baseID}/compare/{headID}", s.optionsHandler("GET"))
	r.Options("/jobs", s.optionsHandler("GET"))
	r.Options("/jobs/{jobID}", s.optionsHandler("GET, DELETE"))

	// Audits
	r.Post("/audits", s.handleSubmitAudit)
	r.Get("/audits", s.handleListAudits)
	r.Get("/audits/{auditID}", s.handleGetAudit)
	r.Get("/audits/{auditID}/violations", s.handleGetAuditViolations)
	r.Get("/audits/{auditID}/summary", s.handleGetAuditSummary)
	r.Get("/audits/{baseID}/compare/{headID}", s.handleCompareAudits)

	// Jobs
	r.Get("/jobs", s.handleListJobs)
	r.Get("/jobs/{jobID}", s.handleGetJob)
	r.Delete("/jobs/{jobID}", s.handleCancelJob)

	// WebSocket: submit a report and stream job progress
	r.Get("/ws/audits", s.handleAuditWS)

	s.mountSwagger()
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// Close shuts down the orchestrator and underlying resources.
func (s *Server) Close() {
	if s.orchestrator != nil {
		s.orchestrator.Close()
	}
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // allow streaming
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// --- HTTP handlers ---

// handleSubmitAudit ingests a raw scanner results document and scores it.
// Query parameters: context= (chromedp|snippet), url= (live-page target),
// async=true to run as a job.
//
// @Summary Submit a scanner results document for confidence scoring
// @Accept json
// @Produce json
// @Router /audits [post]
func (s *Server) handleSubmitAudit(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 32<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}

	scanReport, err := ingest.ParseReport(bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("parsing scanner report", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := audit.Options{
		ContextBackend: r.URL.Query().Get("context"),
		TargetURL:      r.URL.Query().Get("url"),
	}

	if r.URL.Query().Get("async") == "true" {
		// The job must outlive this request; it is canceled via DELETE
		// /jobs/{jobID}, not by the submit request ending.
		job, err := s.orchestrator.StartAuditJob(context.WithoutCancel(r.Context()), scanReport, opts)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.logger.Info("started audit job", logging.Field{Key: "job_id", Value: job.ID})
		writeJSON(w, http.StatusAccepted, job)
		return
	}

	result, err := s.orchestrator.RunAudit(r.Context(), scanReport, opts)
	if err != nil {
		s.logger.Warn("running audit", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// @Summary List stored audits, newest first
// @Produce json
// @Router /audits [get]
func (s *Server) handleListAudits(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	audits, err := s.trk.ListAudits(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing audits", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, audits)
}

// @Summary Get one stored audit envelope
// @Produce json
// @Router /audits/{auditID} [get]
func (s *Server) handleGetAudit(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")

	rec, err := s.trk.GetAudit(r.Context(), auditID)
	if errors.Is(err, tracker.ErrAuditNotFound) {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	if err != nil {
		s.logger.Warn("getting audit", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// handleGetAuditViolations returns the scored violations of an audit.
// Query parameters: minConfidence= filters, flagged=true keeps only
// review-flagged items, sort=confidence orders descending.
//
// @Summary Get the scored violations of an audit
// @Produce json
// @Router /audits/{auditID}/violations [get]
func (s *Server) handleGetAuditViolations(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")

	scored, err := s.trk.GetScoredViolations(r.Context(), auditID)
	if err != nil {
		s.logger.Warn("getting scored violations", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if ms := r.URL.Query().Get("minConfidence"); ms != "" {
		min, err := strconv.ParseFloat(ms, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid minConfidence")
			return
		}
		scored = aggregate.FilterByConfidence(scored, min)
	}
	if r.URL.Query().Get("flagged") == "true" {
		scored = aggregate.FilterFlagged(scored)
	}
	if r.URL.Query().Get("sort") == "confidence" {
		scored = aggregate.SortByConfidence(scored)
	}

	writeJSON(w, http.StatusOK, scored)
}

// @Summary Get the aggregate summary of an audit
// @Produce json
// @Router /audits/{auditID}/summary [get]
func (s *Server) handleGetAuditSummary(w http.ResponseWriter, r *http.Request) {
	auditID := chi.URLParam(r, "auditID")

	rec, err := s.trk.GetAudit(r.Context(), auditID)
	if errors.Is(err, tracker.ErrAuditNotFound) {
		writeError(w, http.StatusNotFound, "audit not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, rec.Summary)
}

// @Summary Compare the summaries of two audits
// @Produce json
// @Router /audits/{baseID}/compare/{headID} [get]
func (s *Server) handleCompareAudits(w http.ResponseWriter, r *http.Request) {
	baseID := chi.URLParam(r, "baseID")
	headID := chi.URLParam(r, "headID")

	base, err := s.trk.GetAudit(r.Context(), baseID)
	if err != nil {
		writeError(w, auditErrStatus(err), err.Error())
		return
	}
	head, err := s.trk.GetAudit(r.Context(), headID)
	if err != nil {
		writeError(w, auditErrStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report.Compare(*base, *head))
}

func auditErrStatus(err error) int {
	if errors.Is(err, tracker.ErrAuditNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// Jobs

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs := s.orchestrator.ListJobs()
	writeJSON(w, http.StatusOK, jobs)
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleCancelJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	s.orchestrator.CancelJob(jobID)
	s.logger.Info("canceled job", logging.Field{Key: "job_id", Value: jobID})
	writeJSON(w, http.StatusNoContent, nil)
}

// WebSocket

// handleAuditWS upgrades the connection, reads one scanner results
// document as the first message, starts an audit job and streams its
// events until done.
func (s *Server) handleAuditWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	_, payload, err := conn.ReadMessage()
	if err != nil {
		return
	}
	scanReport, err := ingest.ParseReportBytes(payload)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	opts := audit.Options{
		ContextBackend: r.URL.Query().Get("context"),
		TargetURL:      r.URL.Query().Get("url"),
	}

	job, err := s.orchestrator.StartAuditJob(r.Context(), scanReport, opts)
	if err != nil {
		_ = conn.WriteJSON(map[string]string{"error": err.Error()})
		return
	}

	s.logger.Info("started audit job over websocket", logging.Field{Key: "job_id", Value: job.ID})
	_ = conn.WriteJSON(job)

	for ev := range job.Events {
		if err := conn.WriteJSON(ev); err != nil {
			// Assume client disconnected; cancel the job.
			s.orchestrator.CancelJob(job.ID)
			return
		}
	}
}
