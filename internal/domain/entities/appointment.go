package entities

import "time"

// AppointmentStatus tracks the lifecycle of a booking.
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a scheduled visit.
type Appointment struct {
	ID                string            `json:"id"`
	PatientName       string            `json:"patientName"`
	PatientID         string            `json:"patientId,omitempty"`
	Phone             string            `json:"phone"`
	Department        string            `json:"department"`
	DepartmentName    string            `json:"departmentName,omitempty"`
	Doctor            string            `json:"doctor"`
	DoctorID          string            `json:"doctorId,omitempty"`
	DateTime          time.Time         `json:"dateTime"`
	DurationMinutes   int               `json:"duration"`
	Condition         string            `json:"condition"`
	Status            AppointmentStatus `json:"status"`
	Priority          string            `json:"priority,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	InsuranceProvider string            `json:"insuranceProvider,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// Department is a bookable hospital department.
type Department struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Doctor is a member of the bookable roster.
type Doctor struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}
