package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medroute/navigator/internal/application/services"
	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/repositories"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

// MockAppointmentRepository defines the mock persistence layer
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAppointmentRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

var bookingNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func validBooking() *entities.Appointment {
	return &entities.Appointment{
		PatientName: "Jane Doe",
		Phone:       "+27 11 555 0100",
		Department:  "general",
		Doctor:      "dr_johnson",
		DateTime:    bookingNow.Add(24 * time.Hour),
		Condition:   "persistent headache",
	}
}

func newTestAppointmentService(repo repositories.AppointmentRepository) *services.AppointmentService {
	return services.NewAppointmentService(repo).
		WithClock(func() time.Time { return bookingNow })
}

func TestAppointmentService_Book(t *testing.T) {
	t.Run("fills defaults and persists", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		svc := newTestAppointmentService(repo)

		created, err := svc.Book(context.Background(), validBooking())
		require.NoError(t, err)

		assert.NotEmpty(t, created.ID)
		assert.Equal(t, entities.AppointmentStatusPending, created.Status)
		assert.Equal(t, 30, created.DurationMinutes)
		assert.Equal(t, "medium", created.Priority)
		assert.Equal(t, "dr_johnson", created.DoctorID)
		assert.Equal(t, bookingNow, created.CreatedAt)
		repo.AssertExpectations(t)
	})

	t.Run("rejects missing required fields by name", func(t *testing.T) {
		fields := []struct {
			name   string
			mutate func(*entities.Appointment)
		}{
			{"patientName", func(a *entities.Appointment) { a.PatientName = "" }},
			{"phone", func(a *entities.Appointment) { a.Phone = "" }},
			{"department", func(a *entities.Appointment) { a.Department = "" }},
			{"doctor", func(a *entities.Appointment) { a.Doctor = "" }},
			{"condition", func(a *entities.Appointment) { a.Condition = "" }},
			{"dateTime", func(a *entities.Appointment) { a.DateTime = time.Time{} }},
		}

		for _, field := range fields {
			t.Run(field.name, func(t *testing.T) {
				repo := new(MockAppointmentRepository)
				svc := newTestAppointmentService(repo)

				booking := validBooking()
				field.mutate(booking)

				_, err := svc.Book(context.Background(), booking)
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
				assert.Contains(t, err.Error(), field.name)
			})
		}
	})

	t.Run("rejects past appointment time", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		svc := newTestAppointmentService(repo)

		booking := validBooking()
		booking.DateTime = bookingNow.Add(-time.Hour)

		_, err := svc.Book(context.Background(), booking)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		svc := newTestAppointmentService(repo)

		booking := validBooking()
		booking.Status = "rescheduled"

		_, err := svc.Book(context.Background(), booking)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}

func TestAppointmentService_Update(t *testing.T) {
	t.Run("merges changes into the stored appointment", func(t *testing.T) {
		existing := validBooking()
		existing.ID = "appt_1"
		existing.Status = entities.AppointmentStatusPending

		repo := new(MockAppointmentRepository)
		repo.On("GetByID", mock.Anything, "appt_1").Return(existing, nil)
		repo.On("Update", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.Status == entities.AppointmentStatusConfirmed && a.Notes == "bring referral letter"
		})).Return(nil)
		svc := newTestAppointmentService(repo)

		updated, err := svc.Update(context.Background(), "appt_1", &entities.Appointment{
			Status: entities.AppointmentStatusConfirmed,
			Notes:  "bring referral letter",
		})
		require.NoError(t, err)

		assert.Equal(t, entities.AppointmentStatusConfirmed, updated.Status)
		assert.Equal(t, bookingNow, updated.UpdatedAt)
		// Untouched fields survive the merge
		assert.Equal(t, "Jane Doe", updated.PatientName)
		repo.AssertExpectations(t)
	})

	t.Run("propagates not found", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		repo.On("GetByID", mock.Anything, "absent").
			Return(nil, apperrors.NewNotFoundError("appointment not found"))
		svc := newTestAppointmentService(repo)

		_, err := svc.Update(context.Background(), "absent", &entities.Appointment{})
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAppointmentService_Cancel(t *testing.T) {
	repo := new(MockAppointmentRepository)
	repo.On("Delete", mock.Anything, "appt_1").Return(nil)
	svc := newTestAppointmentService(repo)

	require.NoError(t, svc.Cancel(context.Background(), "appt_1"))

	err := svc.Cancel(context.Background(), "")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
}

func TestDepartmentsAndDoctors(t *testing.T) {
	departments := services.Departments()
	require.Len(t, departments, 5)
	assert.Equal(t, "emergency", departments[0].ID)

	doctors := services.Doctors()
	require.Len(t, doctors, 5)
	for i, doctor := range doctors {
		assert.Equal(t, departments[i].ID, doctor.Department)
	}
}
