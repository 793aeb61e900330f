package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"knowflow-backend/application/services"
	"knowflow-backend/pkg/common"
	"knowflow-backend/pkg/errors"
)

// RiskHandler handles risk analysis and finding lifecycle requests
type RiskHandler struct {
	service  *services.RiskService
	errorOut *errors.ErrorHandler
	logger   *zap.Logger
}

// NewRiskHandler creates a new risk handler
func NewRiskHandler(service *services.RiskService, errorOut *errors.ErrorHandler, logger *zap.Logger) *RiskHandler {
	return &RiskHandler{
		service:  service,
		errorOut: errorOut,
		logger:   logger,
	}
}

// Analyze handles POST /processes/{processID}/risks/analyze
func (h *RiskHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var opts services.AnalyzeOptions
	if r.ContentLength > 0 {
		if err := common.ParseJSONBody(r, &opts, maxBodyBytes); err != nil {
			h.errorOut.Handle(w, r, errors.NewValidationError("invalid request body").WithCause(err))
			return
		}
	}

	report, err := h.service.Analyze(r.Context(), chi.URLParam(r, "processID"), opts)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}

// List handles GET /processes/{processID}/risks with optional severity,
// category and include_resolved query filters.
func (h *RiskHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := services.RiskFilter{
		Severity:        r.URL.Query().Get("severity"),
		Category:        r.URL.Query().Get("category"),
		IncludeResolved: r.URL.Query().Get("include_resolved") == "true",
	}

	findings, err := h.service.List(r.Context(), chi.URLParam(r, "processID"), filter)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"findings": findings,
		"total":    len(findings),
	})
}

// Get handles GET /processes/{processID}/risks/{findingID}
func (h *RiskHandler) Get(w http.ResponseWriter, r *http.Request) {
	finding, err := h.service.Get(r.Context(), chi.URLParam(r, "processID"), chi.URLParam(r, "findingID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, finding)
}

// Acknowledge handles POST /processes/{processID}/risks/{findingID}/acknowledge
func (h *RiskHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	finding, err := h.service.Acknowledge(r.Context(), chi.URLParam(r, "processID"), chi.URLParam(r, "findingID"))
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, finding)
}

// resolveRequest carries the mandatory resolution notes
type resolveRequest struct {
	Notes string `json:"notes"`
}

// Resolve handles POST /processes/{processID}/risks/{findingID}/resolve
func (h *RiskHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := common.ParseJSONBody(r, &req, maxBodyBytes); err != nil {
		h.errorOut.Handle(w, r, errors.NewInvalidResolutionError().WithCause(err))
		return
	}

	finding, err := h.service.Resolve(r.Context(), chi.URLParam(r, "processID"), chi.URLParam(r, "findingID"), req.Notes)
	if err != nil {
		h.errorOut.Handle(w, r, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, finding)
}
