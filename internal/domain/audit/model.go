package audit

import (
	"context"
	"time"
)

// Entry es una fila inmutable del log de auditoría administrativo.
type Entry struct {
	ID           string
	AdminID      string
	TargetUserID string
	Module       string
	Action       string
	Description  string
	Reason       string
	CreatedAt    time.Time
}

// Actor identifica al admin que ejecuta una acción; Name alimenta
// las descripciones legibles del feed.
type Actor struct {
	ID   string
	Name string
}

// Input describe una acción administrativa a registrar.
type Input struct {
	Actor        Actor
	TargetUserID string
	Module       string
	Action       string
	Description  string
	Reason       string
}

// Recorder registra acciones admin. Best-effort: nunca devuelve error,
// las escrituras fallidas no deben abortar la operación primaria.
type Recorder interface {
	Record(ctx context.Context, in Input)
}

type Repository interface {
	Insert(ctx context.Context, e Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
