package repositories

import (
	"context"
	"time"

	"github.com/medroute/navigator/internal/domain/entities"
)

// AppointmentFilter narrows appointment listings.
type AppointmentFilter struct {
	Department string
	DoctorID   string
	Status     string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// AppointmentRepository defines persistence for appointments.
type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entities.Appointment) error
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, error)
	Update(ctx context.Context, appointment *entities.Appointment) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

// TriageRepository defines persistence for triage assessments.
type TriageRepository interface {
	Save(ctx context.Context, result *entities.TriageResult) error
	GetByID(ctx context.Context, patientID string) (*entities.TriageResult, error)
	Update(ctx context.Context, result *entities.TriageResult) error
	Count(ctx context.Context) (int, error)
}
