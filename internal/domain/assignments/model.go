package assignments

import (
	"context"
	"time"
)

// Assignment vincula un paciente con su doctor asignado.
type Assignment struct {
	ID         string
	DoctorID   string
	PatientID  string
	AssignedBy string
	AssignedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, a Assignment) error
	Delete(ctx context.Context, id string) error
	DeleteByDoctor(ctx context.Context, doctorID string) (int, error)
	GetByID(ctx context.Context, id string) (Assignment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]Assignment, error)
	ListAll(ctx context.Context) ([]Assignment, error)
}
