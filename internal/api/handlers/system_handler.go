package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/medroute/navigator/internal/application/services"
	"github.com/medroute/navigator/internal/infrastructure/observability"
)

// AssessmentCounter reports how many triage assessments are stored.
type AssessmentCounter interface {
	CountAssessments(ctx context.Context) (int, error)
}

// AppointmentCounter reports how many appointments are stored.
type AppointmentCounter interface {
	CountAppointments(ctx context.Context) (int, error)
}

// SystemHandler serves the health, roster and stats endpoints backing the
// staff dashboard.
type SystemHandler struct {
	appointments AppointmentCounter
	assessments  AssessmentCounter
	startedAt    time.Time
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(appointments AppointmentCounter, assessments AssessmentCounter) *SystemHandler {
	return &SystemHandler{
		appointments: appointments,
		assessments:  assessments,
		startedAt:    time.Now(),
	}
}

// Health handles GET /api/health
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListDepartments handles GET /api/departments
func (h *SystemHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, services.Departments())
}

// ListDoctors handles GET /api/doctors
func (h *SystemHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, services.Doctors())
}

// Stats handles GET /api/stats
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerFromContext(ctx)

	appointmentCount := 0
	if h.appointments != nil {
		count, err := h.appointments.CountAppointments(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to count appointments")
		} else {
			appointmentCount = count
		}
	}

	assessmentCount := 0
	if h.assessments != nil {
		count, err := h.assessments.CountAssessments(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to count triage assessments")
		} else {
			assessmentCount = count
		}
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments":  appointmentCount,
		"assessments":   assessmentCount,
		"uptimeSeconds": int(time.Since(h.startedAt).Seconds()),
	})
}
