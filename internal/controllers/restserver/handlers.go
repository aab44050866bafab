package restserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/chrissnell/trackreconcile/internal/constants"
	"github.com/chrissnell/trackreconcile/internal/metrics"
	"github.com/chrissnell/trackreconcile/internal/route"
	"github.com/chrissnell/trackreconcile/internal/store"
	"github.com/chrissnell/trackreconcile/internal/types"
	"github.com/chrissnell/trackreconcile/pkg/responseformat"
	"github.com/gorilla/mux"
)

// maxBodyBytes bounds inline sample uploads
const maxBodyBytes = 16 << 20

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
	}
}

// Health reports liveness and which storage backend is attached
func (h *Handlers) Health(w http.ResponseWriter, req *http.Request) {
	storage := "none"
	switch h.controller.deps.Store.(type) {
	case *store.PostgresStore:
		storage = "postgres"
	case *store.SQLiteStore:
		storage = "sqlite"
	}
	h.formatter.WriteResponse(w, req, http.StatusOK, HealthResponse{Status: "ok", Storage: storage, Version: constants.Version}, nil)
}

// ReconcileSession reconciles a stored session against the client's figures
func (h *Handlers) ReconcileSession(w http.ResponseWriter, req *http.Request) {
	sessionID := mux.Vars(req)["id"]

	var body ReconcileRequest
	if !h.decode(w, req, &body) {
		return
	}

	if h.controller.deps.Store == nil {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "no sample store configured")
		return
	}

	// A session without GPS samples still completes on the client's figures
	samples, err := h.controller.deps.Store.Samples(req.Context(), sessionID)
	if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		h.writeError(w, req, err)
		return
	}

	h.reconcile(w, req, sessionID, body.input(samples))
}

// ReconcileInline reconciles samples supplied in the request body
func (h *Handlers) ReconcileInline(w http.ResponseWriter, req *http.Request) {
	var body InlineReconcileRequest
	if !h.decode(w, req, &body) {
		return
	}

	h.reconcile(w, req, "", body.input(body.Samples))
}

// GetRoute renders a stored session as a privacy-clipped polyline
func (h *Handlers) GetRoute(w http.ResponseWriter, req *http.Request) {
	sessionID := mux.Vars(req)["id"]

	rendered, stats, ok := h.buildRoute(w, req, sessionID)
	if !ok {
		return
	}

	h.formatter.WriteResponse(w, req, http.StatusOK, RouteResponse{
		SessionID: sessionID,
		Points:    rendered,
		Stats:     stats,
	}, routeHeaders(rendered))
}

// GetRouteGeoJSON renders a stored session as a GeoJSON FeatureCollection
func (h *Handlers) GetRouteGeoJSON(w http.ResponseWriter, req *http.Request) {
	sessionID := mux.Vars(req)["id"]

	rendered, _, ok := h.buildRoute(w, req, sessionID)
	if !ok {
		return
	}

	data, err := route.ToGeoJSON(sessionID, rendered)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Header().Set("X-Route-Points", strconv.Itoa(len(rendered)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetRouteGPX renders a stored session as a downloadable GPX track
func (h *Handlers) GetRouteGPX(w http.ResponseWriter, req *http.Request) {
	sessionID := mux.Vars(req)["id"]

	rendered, _, ok := h.buildRoute(w, req, sessionID)
	if !ok {
		return
	}

	data, err := route.ToGPX(sessionID, rendered)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	w.Header().Set("Content-Type", "application/gpx+xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sessionID+".gpx"))
	w.Header().Set("X-Route-Points", strconv.Itoa(len(rendered)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// RouteInline renders samples supplied in the request body
func (h *Handlers) RouteInline(w http.ResponseWriter, req *http.Request) {
	var body InlineRouteRequest
	if !h.decode(w, req, &body) {
		return
	}

	rendered, stats := h.controller.deps.Builder.Build(body.Samples)
	h.formatter.WriteResponse(w, req, http.StatusOK, RouteResponse{
		Points: rendered,
		Stats:  stats,
	}, routeHeaders(rendered))
}

func (h *Handlers) reconcile(w http.ResponseWriter, req *http.Request, sessionID string, in metrics.Input) {
	report, err := h.controller.deps.Reconciler.Reconcile(in)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	// A failed audit write never fails the completion itself
	if h.controller.deps.Audit && sessionID != "" && h.controller.deps.Store != nil {
		if err := h.controller.deps.Store.SaveAudit(req.Context(), store.NewAuditRecord(sessionID, report)); err != nil {
			h.controller.logger.Errorw("could not save reconciliation audit",
				"session_id", sessionID, "error", err)
		}
	}

	h.formatter.WriteResponse(w, req, http.StatusOK, ReconcileResponse{
		SessionID: sessionID,
		Report:    report,
	}, nil)
}

func (h *Handlers) buildRoute(w http.ResponseWriter, req *http.Request, sessionID string) (types.RenderRoute, route.Stats, bool) {
	samples, ok := h.loadSamples(w, req, sessionID)
	if !ok {
		return nil, route.Stats{}, false
	}

	rendered, stats := h.controller.deps.Builder.Build(samples)
	return rendered, stats, true
}

func (h *Handlers) loadSamples(w http.ResponseWriter, req *http.Request, sessionID string) ([]types.LocationSample, bool) {
	if h.controller.deps.Store == nil {
		h.formatter.WriteError(w, req, http.StatusServiceUnavailable, "no sample store configured")
		return nil, false
	}

	samples, err := h.controller.deps.Store.Samples(req.Context(), sessionID)
	if err != nil {
		h.writeError(w, req, err)
		return nil, false
	}
	return samples, true
}

func (h *Handlers) decode(w http.ResponseWriter, req *http.Request, v any) bool {
	req.Body = http.MaxBytesReader(w, req.Body, maxBodyBytes)
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		h.formatter.WriteError(w, req, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

// writeError maps domain errors onto HTTP status codes
func (h *Handlers) writeError(w http.ResponseWriter, req *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, metrics.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, store.ErrSessionNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		h.controller.logger.Errorw("request failed",
			"path", req.URL.Path, "request_id", req.Header.Get(requestIDHeader), "error", err)
		h.formatter.WriteError(w, req, status, "internal error")
		return
	}
	h.formatter.WriteError(w, req, status, err.Error())
}

func routeHeaders(r types.RenderRoute) map[string]string {
	return map[string]string{"X-Route-Points": strconv.Itoa(len(r))}
}
