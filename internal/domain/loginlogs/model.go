package loginlogs

import (
	"context"
	"time"
)

// ListLimit acota el historial visible; logins más viejos quedan en la tabla
// pero no se sirven por la API.
const ListLimit = 500

// LoginLog es una fila del historial de ingresos. Email y Role se
// desnormalizan al momento del login; FullName se resuelve al listar
// contra el directorio vigente.
type LoginLog struct {
	ID         string
	UserID     string
	Email      string
	Role       string
	LoggedInAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, l LoginLog) error
	ListRecent(ctx context.Context, limit int) ([]LoginLog, error)
}
