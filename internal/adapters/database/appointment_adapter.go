package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/repositories"
	sqliteclient "github.com/medroute/navigator/internal/infrastructure/clients/sqlite"
	apperrors "github.com/medroute/navigator/pkg/errors"
)

// AppointmentAdapter implements AppointmentRepository on the embedded
// database.
type AppointmentAdapter struct {
	client *sqliteclient.Client
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *sqliteclient.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{client: client}
}

const appointmentColumns = `id, patient_name, patient_id, phone, department, department_name,
	doctor, doctor_id, date_time, duration_minutes, condition, status, priority, notes,
	insurance_provider, created_at, updated_at`

// Create inserts a new appointment
func (a *AppointmentAdapter) Create(ctx context.Context, appt *entities.Appointment) error {
	query := fmt.Sprintf(`INSERT INTO appointments (%s)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, appointmentColumns)

	_, err := a.client.DB().ExecContext(ctx, query,
		appt.ID, appt.PatientName, appt.PatientID, appt.Phone, appt.Department,
		appt.DepartmentName, appt.Doctor, appt.DoctorID, appt.DateTime,
		appt.DurationMinutes, appt.Condition, string(appt.Status), appt.Priority,
		appt.Notes, appt.InsuranceProvider, appt.CreatedAt, appt.UpdatedAt,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}
	return nil
}

// GetByID retrieves an appointment by ID
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = ?`, appointmentColumns)
	row := a.client.DB().QueryRowContext(ctx, query, id)

	appt, err := scanAppointment(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("appointment not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}
	return appt, nil
}

// List retrieves appointments matching the filter
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	var conditions []string
	var args []interface{}

	if filter.Department != "" && filter.Department != "all" {
		conditions = append(conditions, "department = ?")
		args = append(args, filter.Department)
	}
	if filter.DoctorID != "" && filter.DoctorID != "all" {
		conditions = append(conditions, "doctor_id = ?")
		args = append(args, filter.DoctorID)
	}
	if filter.Status != "" && filter.Status != "all" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, "date_time >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "date_time <= ?")
		args = append(args, *filter.DateTo)
	}

	query := fmt.Sprintf(`SELECT %s FROM appointments`, appointmentColumns)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date_time ASC"

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	appointments := []*entities.Appointment{}
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate appointments", err)
	}
	return appointments, nil
}

// Update updates an existing appointment
func (a *AppointmentAdapter) Update(ctx context.Context, appt *entities.Appointment) error {
	query := `UPDATE appointments SET patient_name = ?, patient_id = ?, phone = ?,
		department = ?, department_name = ?, doctor = ?, doctor_id = ?, date_time = ?,
		duration_minutes = ?, condition = ?, status = ?, priority = ?, notes = ?,
		insurance_provider = ?, updated_at = ? WHERE id = ?`

	result, err := a.client.DB().ExecContext(ctx, query,
		appt.PatientName, appt.PatientID, appt.Phone, appt.Department,
		appt.DepartmentName, appt.Doctor, appt.DoctorID, appt.DateTime,
		appt.DurationMinutes, appt.Condition, string(appt.Status), appt.Priority,
		appt.Notes, appt.InsuranceProvider, appt.UpdatedAt, appt.ID,
	)
	if err != nil {
		return apperrors.NewInternalError("failed to update appointment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to confirm appointment update", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("appointment not found")
	}
	return nil
}

// Delete removes an appointment
func (a *AppointmentAdapter) Delete(ctx context.Context, id string) error {
	result, err := a.client.DB().ExecContext(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewInternalError("failed to delete appointment", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to confirm appointment delete", err)
	}
	if affected == 0 {
		return apperrors.NewNotFoundError("appointment not found")
	}
	return nil
}

// Count returns the total number of appointments
func (a *AppointmentAdapter) Count(ctx context.Context) (int, error) {
	var count int
	if err := a.client.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count appointments", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	var appt entities.Appointment
	var status string
	err := row.Scan(
		&appt.ID, &appt.PatientName, &appt.PatientID, &appt.Phone, &appt.Department,
		&appt.DepartmentName, &appt.Doctor, &appt.DoctorID, &appt.DateTime,
		&appt.DurationMinutes, &appt.Condition, &status, &appt.Priority,
		&appt.Notes, &appt.InsuranceProvider, &appt.CreatedAt, &appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	appt.Status = entities.AppointmentStatus(status)
	return &appt, nil
}
