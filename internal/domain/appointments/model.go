package appointments

import (
	"context"
	"time"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Appointment es un turno agendado entre paciente y doctor.
// El panel solo lo lee: los turnos se crean desde la app de pacientes.
type Appointment struct {
	ID          string
	PatientID   string
	PatientName string
	DoctorName  string
	Kind        string // consulta, control, etc.
	Status      Status
	ScheduledAt time.Time
	CreatedAt   time.Time
}

type Repository interface {
	ListSince(ctx context.Context, since time.Time, limit int) ([]Appointment, error)
	Count(ctx context.Context) (int, error)
	ListCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}
