package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/zate/ifsgen/internal/db"
	"github.com/zate/ifsgen/internal/ifs"
	"github.com/zate/ifsgen/internal/metrics"
	"github.com/zate/ifsgen/internal/nodegroup"
	"github.com/zate/ifsgen/internal/preset"
	"github.com/zate/ifsgen/internal/query"
	"github.com/zate/ifsgen/internal/report"
)

// Server is the ifsgen HTTP API server.
type Server struct {
	store  db.Store
	mux    *http.ServeMux
	config Config
	log    logrus.FieldLogger
}

// New creates a new Server with the given store and config.
func New(store db.Store, cfg Config) *Server {
	s := &Server{
		store:  store,
		mux:    http.NewServeMux(),
		config: cfg,
		log:    logrus.StandardLogger(),
	}
	s.registerRoutes()
	return s
}

// SetLogger replaces the request and lifecycle logger.
func (s *Server) SetLogger(l logrus.FieldLogger) {
	s.log = l
}

// Handler returns the http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.mux
	if s.config.APIToken != "" {
		handler = s.authMiddleware(handler)
	}
	return s.loggingMiddleware(handler)
}

// ListenAndServe starts the server. Uses TLS if configured.
func (s *Server) ListenAndServe() error {
	addr := s.config.Addr()
	handler := s.Handler()

	if s.config.HasTLS() {
		s.log.WithField("addr", addr).Info("ifsgen server listening (https)")
		return http.ListenAndServeTLS(addr, s.config.TLSCert, s.config.TLSKey, handler)
	}

	s.log.WithField("addr", addr).Info("ifsgen server listening (http)")
	return http.ListenAndServe(addr, handler)
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())
	s.mux.HandleFunc("GET /api/status", s.handleStatus)

	// Limits and estimation
	s.mux.HandleFunc("GET /api/limits", s.handleLimits)
	s.mux.HandleFunc("GET /api/interface", s.handleInterface)
	s.mux.HandleFunc("POST /api/validate", s.handleValidate)
	s.mux.HandleFunc("POST /api/estimate", s.handleEstimate)

	// Preset CRUD
	s.mux.HandleFunc("GET /api/presets", s.handleListPresets)
	s.mux.HandleFunc("POST /api/presets", s.handleCreatePreset)
	s.mux.HandleFunc("GET /api/presets/{id}", s.handleGetPreset)
	s.mux.HandleFunc("PATCH /api/presets/{id}", s.handleUpdatePreset)
	s.mux.HandleFunc("DELETE /api/presets/{id}", s.handleDeletePreset)

	// Tags
	s.mux.HandleFunc("POST /api/presets/{id}/tags", s.handleAddTags)
	s.mux.HandleFunc("DELETE /api/presets/{id}/tags", s.handleRemoveTags)

	// Host handoff
	s.mux.HandleFunc("GET /api/presets/{id}/plan", s.handlePlan)
	s.mux.HandleFunc("GET /api/presets/{id}/report", s.handleReport)
}

// --- Health ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Status ---

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- Limits and estimation ---

type paramsRequest struct {
	TransformCount *int `json:"transform_count"`
	Iterations     *int `json:"iterations"`
	// Unchecked skips the envelope check and returns the raw point count.
	Unchecked bool `json:"unchecked,omitempty"`
}

func (req paramsRequest) values() (int, int, error) {
	if req.TransformCount == nil || req.Iterations == nil {
		return 0, 0, fmt.Errorf("transform_count and iterations are required")
	}
	return *req.TransformCount, *req.Iterations, nil
}

func (s *Server) handleLimits(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ifs.CurrentLimits())
}

func (s *Server) handleInterface(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"group_name": nodegroup.GroupName,
		"sockets":    nodegroup.Interface(),
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req paramsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, i, err := req.values()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := ifs.EnforceIterationLimits(t, i); err != nil {
		writeLimitError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}

func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req paramsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	t, i, err := req.values()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Unchecked {
		n, err := ifs.BoundedPointCount(t, i, ifs.MaxUncheckedBits)
		if err != nil {
			writeLimitError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"transform_count": t,
			"iterations":      i,
			"point_count":     n,
		})
		return
	}

	est, err := ifs.Assess(t, i)
	if err != nil {
		writeLimitError(w, err)
		return
	}
	metrics.RecordEstimate(est.Tier)
	writeJSON(w, http.StatusOK, est)
}

// --- Preset CRUD ---

type createPresetRequest struct {
	preset.Preset
	Tags []string `json:"tags,omitempty"`
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := s.store.GetPresetByName(req.Name); err == nil {
		writeError(w, http.StatusConflict, fmt.Sprintf("preset %q already exists", req.Name))
		return
	}

	rec, err := s.store.CreatePreset(db.CreatePresetInput{Preset: req.Preset, Tags: req.Tags})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupPreset(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

type updatePresetRequest struct {
	Description *string            `json:"description,omitempty"`
	Transforms  []preset.Transform `json:"transforms,omitempty"`
	Iterations  *int               `json:"iterations,omitempty"`
	Seed        *int               `json:"seed,omitempty"`
	OutputMode  *int               `json:"output_mode,omitempty"`
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	id, err := s.resolvePathID(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	var req updatePresetRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.UpdatePreset(id, db.UpdatePresetInput{
		Description: req.Description,
		Transforms:  req.Transforms,
		Iterations:  req.Iterations,
		Seed:        req.Seed,
		OutputMode:  req.OutputMode,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id, err := s.resolvePathID(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if err := s.store.DeletePreset(id); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	opts := db.ListOptions{Tag: r.URL.Query().Get("tag")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid limit %q", v))
			return
		}
		opts.Limit = n
	}

	records, err := query.ExecuteQuery(s.store, r.URL.Query().Get("q"), opts)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if records == nil {
		records = []*db.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"presets": records,
		"count":   len(records),
	})
}

// --- Tags ---

type tagsRequest struct {
	Tags []string `json:"tags"`
}

func (s *Server) handleAddTags(w http.ResponseWriter, r *http.Request) {
	s.changeTags(w, r, s.store.AddTag)
}

func (s *Server) handleRemoveTags(w http.ResponseWriter, r *http.Request) {
	s.changeTags(w, r, s.store.RemoveTag)
}

func (s *Server) changeTags(w http.ResponseWriter, r *http.Request, apply func(id, tag string) error) {
	id, err := s.resolvePathID(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	var req tagsRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, tag := range req.Tags {
		if err := apply(id, strings.TrimSpace(tag)); err != nil {
			s.writeStoreError(w, err)
			return
		}
	}

	tags, err := s.store.GetTags(id)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "tags": tags})
}

// --- Host handoff ---

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupPreset(w, r)
	if !ok {
		return
	}

	plan, err := nodegroup.NewBuildRequest(&rec.Preset)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupPreset(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, report.RenderPreset(rec))
}

// --- Helpers ---

func (s *Server) lookupPreset(w http.ResponseWriter, r *http.Request) (*db.Record, bool) {
	id, err := s.resolvePathID(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return nil, false
	}
	rec, err := s.store.GetPreset(id)
	if err != nil {
		s.writeStoreError(w, err)
		return nil, false
	}
	return rec, true
}

func (s *Server) resolvePathID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: missing id", preset.ErrInvalid)
	}
	return s.store.ResolveID(raw)
}

// writeStoreError maps domain errors to status codes: limit violations are
// 422, other preset field and filter errors 400, unknown presets 404.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	var le *ifs.LimitError
	switch {
	case errors.As(err, &le):
		writeLimitError(w, err)
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, preset.ErrInvalid), errors.Is(err, query.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.WithError(err).Error("request failed")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeLimitError(w http.ResponseWriter, err error) {
	var le *ifs.LimitError
	if !errors.As(err, &le) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.RecordLimitViolation(err)
	writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
		"error": err.Error(),
		"kind":  le.Kind,
		"field": le.Field,
		"value": le.Value,
		"bound": le.Bound,
	})
}

func readJSON(r *http.Request, v any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB limit
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}
	if len(body) == 0 {
		return fmt.Errorf("empty request body")
	}
	return json.Unmarshal(body, v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(r.Method, route, rec.status, time.Since(start).Seconds())
		s.log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start),
		}).Debug("request")
	})
}
