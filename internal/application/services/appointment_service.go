package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/repositories"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

// AppointmentService manages the booking lifecycle.
type AppointmentService struct {
	repo repositories.AppointmentRepository
	now  func() time.Time
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(repo repositories.AppointmentRepository) *AppointmentService {
	return &AppointmentService{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (s *AppointmentService) WithClock(now func() time.Time) *AppointmentService {
	s.now = now
	return s
}

// Book validates and persists a new appointment. Missing optional fields
// receive their defaults here so the stored record is always complete.
func (s *AppointmentService) Book(ctx context.Context, appointment *entities.Appointment) (*entities.Appointment, error) {
	if err := s.validateAppointment(appointment); err != nil {
		return nil, err
	}

	now := s.now()
	appointment.ID = uuid.New().String()
	if appointment.DurationMinutes <= 0 {
		appointment.DurationMinutes = 30
	}
	if appointment.Status == "" {
		appointment.Status = entities.AppointmentStatusPending
	}
	if appointment.Priority == "" {
		appointment.Priority = "medium"
	}
	if appointment.DoctorID == "" {
		appointment.DoctorID = appointment.Doctor
	}
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

// Get returns one appointment by ID.
func (s *AppointmentService) Get(ctx context.Context, id string) (*entities.Appointment, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("appointment ID is required")
	}
	return s.repo.GetByID(ctx, id)
}

// List returns appointments matching the filter, ordered by date.
func (s *AppointmentService) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	return s.repo.List(ctx, filter)
}

// Update applies changes to an existing appointment. The ID, creation time
// and patient identity are immutable.
func (s *AppointmentService) Update(ctx context.Context, id string, updated *entities.Appointment) (*entities.Appointment, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if updated.Status != "" {
		if !isValidAppointmentStatus(updated.Status) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid appointment status: %s", updated.Status))
		}
		existing.Status = updated.Status
	}
	if !updated.DateTime.IsZero() {
		existing.DateTime = updated.DateTime
	}
	if updated.Department != "" {
		existing.Department = updated.Department
	}
	if updated.DepartmentName != "" {
		existing.DepartmentName = updated.DepartmentName
	}
	if updated.Doctor != "" {
		existing.Doctor = updated.Doctor
	}
	if updated.DoctorID != "" {
		existing.DoctorID = updated.DoctorID
	}
	if updated.DurationMinutes > 0 {
		existing.DurationMinutes = updated.DurationMinutes
	}
	if updated.Condition != "" {
		existing.Condition = updated.Condition
	}
	if updated.Priority != "" {
		existing.Priority = updated.Priority
	}
	if updated.Notes != "" {
		existing.Notes = updated.Notes
	}
	existing.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// Cancel removes an appointment.
func (s *AppointmentService) Cancel(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.NewValidationError("appointment ID is required")
	}
	return s.repo.Delete(ctx, id)
}

// CountAppointments returns the number of stored appointments.
func (s *AppointmentService) CountAppointments(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *AppointmentService) validateAppointment(appointment *entities.Appointment) error {
	required := []struct {
		name  string
		value string
	}{
		{"patientName", appointment.PatientName},
		{"phone", appointment.Phone},
		{"department", appointment.Department},
		{"doctor", appointment.Doctor},
		{"condition", appointment.Condition},
	}
	for _, field := range required {
		if field.value == "" {
			return apperrors.NewValidationError(fmt.Sprintf("missing required field: %s", field.name))
		}
	}
	if appointment.DateTime.IsZero() {
		return apperrors.NewValidationError("missing required field: dateTime")
	}
	if appointment.DateTime.Before(s.now()) {
		return apperrors.NewValidationError("appointment time must be in the future")
	}
	if appointment.Status != "" && !isValidAppointmentStatus(appointment.Status) {
		return apperrors.NewValidationError(fmt.Sprintf("invalid appointment status: %s", appointment.Status))
	}
	return nil
}

func isValidAppointmentStatus(status entities.AppointmentStatus) bool {
	switch status {
	case entities.AppointmentStatusPending, entities.AppointmentStatusConfirmed,
		entities.AppointmentStatusCompleted, entities.AppointmentStatusCancelled:
		return true
	}
	return false
}

// Departments returns the bookable departments.
func Departments() []entities.Department {
	return []entities.Department{
		{ID: "emergency", Name: "Emergency", Color: "red"},
		{ID: "general", Name: "General Medicine", Color: "blue"},
		{ID: "cardiology", Name: "Cardiology", Color: "purple"},
		{ID: "pediatrics", Name: "Pediatrics", Color: "green"},
		{ID: "orthopedics", Name: "Orthopedics", Color: "orange"},
	}
}

// Doctors returns the bookable roster, one doctor per department.
func Doctors() []entities.Doctor {
	return []entities.Doctor{
		{ID: "dr_smith", Name: "Dr. Smith", Department: "emergency"},
		{ID: "dr_johnson", Name: "Dr. Johnson", Department: "general"},
		{ID: "dr_williams", Name: "Dr. Williams", Department: "cardiology"},
		{ID: "dr_brown", Name: "Dr. Brown", Department: "pediatrics"},
		{ID: "dr_davis", Name: "Dr. Davis", Department: "orthopedics"},
	}
}
