// Package main implements fleetsyncd, a minimal illustrative HTTP adapter
// over pkg/fleetapi's plain service interfaces: functional-options
// construction, one http.Server field, a Run/Shutdown lifecycle, and a
// mutex-free design since every collaborator here (task.Manager,
// history.Store, pipelinecat.Catalog) already guards its own state.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/fleetsync/fleetsync/internal/logging"
	"github.com/fleetsync/fleetsync/pkg/fleetapi"
	"github.com/fleetsync/fleetsync/pkg/fleetdevice"
	"github.com/fleetsync/fleetsync/pkg/history"
	"github.com/fleetsync/fleetsync/pkg/pipelinecat"
	"github.com/fleetsync/fleetsync/pkg/reconcile"
)

// Server wires pkg/fleetapi's service interfaces onto an http.ServeMux.
type Server struct {
	Collect  fleetapi.CollectService
	Sync     fleetapi.SyncService
	Pipeline fleetapi.PipelineService
	Tasks    fleetapi.TaskService
	History  fleetapi.HistoryService

	listenAddr string
	httpServer *http.Server
}

// Option configures a Server at construction time.
type Option func(*Server)

func WithListenAddr(addr string) Option {
	return func(s *Server) { s.listenAddr = addr }
}

func NewServer(opts ...Option) *Server {
	s := &Server{listenAddr: ":8765"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /collect/{kind}", s.handleCollect)
	mux.HandleFunc("POST /sync", s.handleSync)
	mux.HandleFunc("GET /pipelines", s.handlePipelineList)
	mux.HandleFunc("GET /pipelines/{id}", s.handlePipelineGet)
	mux.HandleFunc("POST /pipelines", s.handlePipelineCreate)
	mux.HandleFunc("DELETE /pipelines/{id}", s.handlePipelineDelete)
	mux.HandleFunc("POST /pipelines/{id}/validate", s.handlePipelineValidate)
	mux.HandleFunc("POST /pipelines/{id}/run", s.handlePipelineRun)
	mux.HandleFunc("GET /tasks/{id}", s.handleTaskGet)
	mux.HandleFunc("POST /tasks/{id}/cancel", s.handleTaskCancel)
	mux.HandleFunc("GET /history", s.handleHistoryList)
	mux.HandleFunc("GET /history/stats", s.handleHistoryStats)
	return mux
}

// Run starts the HTTP server and blocks until it stops. Call Shutdown from
// another goroutine to stop it gracefully.
func (s *Server) Run() error {
	s.httpServer = &http.Server{Addr: s.listenAddr, Handler: s.routes()}
	logging.Log.WithField("addr", s.listenAddr).Info("fleetsyncd starting")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("fleetsyncd: listen on %s: %w", s.listenAddr, err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	logging.Log.Info("fleetsyncd shutting down")
	return s.httpServer.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// asyncQuery reports whether the caller asked for async handling via
// ?async=true.
func asyncQuery(r *http.Request) bool {
	return r.URL.Query().Get("async") == "true"
}

type collectRequest struct {
	Devices     []*fleetdevice.Device   `json:"devices"`
	Credentials fleetdevice.Credentials `json:"credentials"`
}

func (s *Server) handleCollect(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.Collect.Collect(r.Context(), kind, req.Devices, fleetapi.CollectOptions{Credentials: req.Credentials}, asyncQuery(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeAsyncResult(w, result)
}

func writeAsyncResult(w http.ResponseWriter, result fleetapi.AsyncResult) {
	if result.Async {
		writeJSON(w, http.StatusAccepted, map[string]string{"task_id": result.TaskID})
		return
	}
	writeJSON(w, http.StatusOK, result.Result)
}

type syncRequest struct {
	Data   reconcile.AllData  `json:"data"`
	Flags  fleetapi.SyncFlags `json:"flags"`
	DryRun bool               `json:"dry_run"`
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	// The sync endpoint takes already-collected data (typically the output
	// of a prior /collect/* call) rather than re-collecting, matching
	// reconcile.AllData's shape as posted JSON.
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.Sync.Sync(r.Context(), req.Data, req.Flags, req.DryRun, asyncQuery(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeAsyncResult(w, result)
}

func (s *Server) handlePipelineList(w http.ResponseWriter, r *http.Request) {
	pipelines, err := s.Pipeline.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, pipelines)
}

func (s *Server) handlePipelineGet(w http.ResponseWriter, r *http.Request) {
	p, err := s.Pipeline.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handlePipelineCreate(w http.ResponseWriter, r *http.Request) {
	var p pipelinecat.Pipeline
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Pipeline.Create(r.Context(), &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusCreated, &p)
}

func (s *Server) handlePipelineValidate(w http.ResponseWriter, r *http.Request) {
	var p pipelinecat.Pipeline
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := s.Pipeline.Validate(r.Context(), &p); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (s *Server) handlePipelineDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.Pipeline.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePipelineRun(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.Pipeline.Run(r.Context(), r.PathValue("id"), req.Devices, false, asyncQuery(r))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	writeAsyncResult(w, result)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	t, err := s.Tasks.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleTaskCancel(w http.ResponseWriter, r *http.Request) {
	if err := s.Tasks.Cancel(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := historyFilterFromQuery(q)
	limit := queryInt(q, "limit", 50)
	offset := queryInt(q, "offset", 0)
	entries, total, err := s.History.List(r.Context(), filter, limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "total": total})
}

func (s *Server) handleHistoryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.History.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func queryInt(q url.Values, key string, def int) int {
	raw := q.Get(key)
	if raw == "" {
		return def
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return def
	}
	return n
}

func historyFilterFromQuery(q url.Values) history.Filter {
	return history.Filter{
		Operation: q.Get("operation"),
		Status:    history.Status(q.Get("status")),
	}
}
