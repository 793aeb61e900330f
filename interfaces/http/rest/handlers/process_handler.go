// Package handlers contains the HTTP request handlers. Handlers decode and
// validate transport input, delegate to the application services and let the
// shared error handler translate domain errors into status codes.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"knowflow-backend/application/services"
	"knowflow-backend/pkg/common"
	"knowflow-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// ProcessHandler handles process registry HTTP requests
type ProcessHandler struct {
	service  *services.ProcessService
	errorOut *errors.ErrorHandler
	logger   *zap.Logger
}

// NewProcessHandler creates a new process handler
func NewProcessHandler(service *services.ProcessService, errorOut *errors.ErrorHandler, logger *zap.Logger) *ProcessHandler {
	return &ProcessHandler{
		service:  service,
		errorOut: errorOut,
		logger:   logger,
	}
}

// Create handles POST /processes
func (h *ProcessHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req services.CreateProcessRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorOut.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	summary, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, summary)
}

// List handles GET /processes
func (h *ProcessHandler) List(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context())
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	params := common.ParsePagination(r)
	start, end := params.Bounds(len(summaries))
	common.RespondJSON(w, http.StatusOK,
		common.NewPaginatedResult(summaries[start:end], params, len(summaries)))
}

// Get handles GET /processes/{processID}
func (h *ProcessHandler) Get(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Get(r.Context(), chi.URLParam(r, "processID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summary)
}

// Update handles PUT /processes/{processID}
func (h *ProcessHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateProcessRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorOut.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
		return
	}

	summary, err := h.service.Update(r.Context(), chi.URLParam(r, "processID"), req)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summary)
}

// Archive handles POST /processes/{processID}/archive
func (h *ProcessHandler) Archive(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Archive(r.Context(), chi.URLParam(r, "processID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, summary)
}

// Delete handles DELETE /processes/{processID}
func (h *ProcessHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "processID")); err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
