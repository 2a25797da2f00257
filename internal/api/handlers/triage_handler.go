package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/medroute/navigator/internal/domain/entities"
)

// TriageService defines the interface for triage operations
type TriageService interface {
	Assess(ctx context.Context, input entities.TriageInput) (*entities.TriageResult, error)
	GetAssessment(ctx context.Context, patientID string) (*entities.TriageResult, error)
	UpdateAssessment(ctx context.Context, patientID string, patch entities.TriagePatch) (*entities.TriageResult, error)
}

// TriageHandler handles triage assessment requests
type TriageHandler struct {
	service TriageService
}

// NewTriageHandler creates a new triage handler
func NewTriageHandler(service TriageService) *TriageHandler {
	return &TriageHandler{
		service: service,
	}
}

// Assess handles POST /api/triage/assess
func (h *TriageHandler) Assess(w http.ResponseWriter, r *http.Request) {
	var input entities.TriageInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.Assess(r.Context(), input)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// GetAssessment handles GET /api/triage/assessments/:id
func (h *TriageHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	result, err := h.service.GetAssessment(r.Context(), patientID)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// PatchAssessment handles PATCH /api/triage/assessments/:id
func (h *TriageHandler) PatchAssessment(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	var patch entities.TriagePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	result, err := h.service.UpdateAssessment(r.Context(), patientID, patch)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
