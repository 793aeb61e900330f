package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"knowflow-backend/application/services"
	"knowflow-backend/pkg/common"
	"knowflow-backend/pkg/errors"
)

// GraphHandler handles graph mutation, versioning and analysis requests
type GraphHandler struct {
	service  *services.GraphService
	errorOut *errors.ErrorHandler
	logger   *zap.Logger
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(service *services.GraphService, errorOut *errors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{
		service:  service,
		errorOut: errorOut,
		logger:   logger,
	}
}

// Merge handles POST /processes/{processID}/graph/merge
func (h *GraphHandler) Merge(w http.ResponseWriter, r *http.Request) {
	var req services.MergeRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorOut.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	result, err := h.service.MergeExtraction(r.Context(), chi.URLParam(r, "processID"), req)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// GetGraph handles GET /processes/{processID}/graph with an optional
// ?version=N query selecting a captured snapshot instead of the live graph.
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	version := -1
	if raw := r.URL.Query().Get("version"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.errorOut.Handle(w, r, errors.NewValidationError("version must be a non-negative integer"))
			return
		}
		version = parsed
	}

	view, err := h.service.GetGraph(r.Context(), chi.URLParam(r, "processID"), version)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// RemoveNode handles DELETE /processes/{processID}/graph/nodes/{nodeID}
func (h *GraphHandler) RemoveNode(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveNode(r.Context(), chi.URLParam(r, "processID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveEdge handles DELETE /processes/{processID}/graph/edges/{edgeID}
func (h *GraphHandler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	err := h.service.RemoveEdge(r.Context(), chi.URLParam(r, "processID"), chi.URLParam(r, "edgeID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// snapshotRequest carries the optional description for a version capture
type snapshotRequest struct {
	Description string `json:"description,omitempty"`
}

// Snapshot handles POST /processes/{processID}/versions
func (h *GraphHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if r.ContentLength > 0 {
		if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
			h.errorOut.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
			return
		}
	}

	meta, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "processID"), req.Description)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, meta)
}

// ListVersions handles GET /processes/{processID}/versions
func (h *GraphHandler) ListVersions(w http.ResponseWriter, r *http.Request) {
	metas, err := h.service.ListVersions(r.Context(), chi.URLParam(r, "processID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"versions": metas,
		"total":    len(metas),
	})
}

// GetVersion handles GET /processes/{processID}/versions/{versionNumber}
func (h *GraphHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	version, err := strconv.Atoi(chi.URLParam(r, "versionNumber"))
	if err != nil || version < 0 {
		h.errorOut.Handle(w, r, errors.NewValidationError("version number must be a non-negative integer"))
		return
	}

	view, err := h.service.GetGraph(r.Context(), chi.URLParam(r, "processID"), version)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, view)
}

// Diff handles GET /processes/{processID}/versions/diff?from=N&to=M
func (h *GraphHandler) Diff(w http.ResponseWriter, r *http.Request) {
	from, err := requiredIntParam(r, "from")
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	to, err := requiredIntParam(r, "to")
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}

	diff, err := h.service.Diff(r.Context(), chi.URLParam(r, "processID"), from, to)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, diff)
}

// Analysis handles GET /processes/{processID}/graph/analysis
func (h *GraphHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Analysis(r.Context(), chi.URLParam(r, "processID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, result)
}

// Path handles GET /processes/{processID}/graph/path?from=ID&to=ID
func (h *GraphHandler) Path(w http.ResponseWriter, r *http.Request) {
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	if from == "" || to == "" {
		h.errorOut.Handle(w, r, errors.NewValidationError("from and to query parameters are required"))
		return
	}

	path, err := h.service.Path(r.Context(), chi.URLParam(r, "processID"), from, to)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"path":      path,
		"reachable": len(path) > 0,
	})
}

// Downstream handles GET /processes/{processID}/graph/nodes/{nodeID}/downstream
func (h *GraphHandler) Downstream(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Downstream(r.Context(), chi.URLParam(r, "processID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"node_ids": ids,
		"total":    len(ids),
	})
}

// Upstream handles GET /processes/{processID}/graph/nodes/{nodeID}/upstream
func (h *GraphHandler) Upstream(w http.ResponseWriter, r *http.Request) {
	ids, err := h.service.Upstream(r.Context(), chi.URLParam(r, "processID"), chi.URLParam(r, "nodeID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"node_ids": ids,
		"total":    len(ids),
	})
}

func requiredIntParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, errors.NewValidationError(name + " query parameter is required")
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, errors.NewValidationError(name + " must be a non-negative integer")
	}
	return value, nil
}
