package activity

import (
	"context"
	"time"
)

// TableName es el nombre lógico de la tabla de feed para notificaciones realtime.
const TableName = "platform_activity"

type Kind string

const (
	KindPlatform    Kind = "platform"
	KindHealth      Kind = "health"
	KindAppointment Kind = "appointment"
)

// Entry es una fila cruda del feed de plataforma (contraparte legible del audit log).
type Entry struct {
	ID           string
	ActorID      string
	TargetUserID string
	Module       string
	Action       string
	Description  string
	CreatedAt    time.Time
}

// Item es la proyección unificada que ve el admin: cualquier fuente
// (acción de plataforma, métrica de salud, turno) termina en esta forma.
// Efímero: se recalcula en cada refresh, nunca se persiste.
type Item struct {
	Kind        Kind      `json:"kind"`
	Module      string    `json:"module"`
	Action      string    `json:"action"`
	Icon        string    `json:"icon"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Profile es la vista mínima del directorio de cuentas que necesita el feed.
type Profile struct {
	ID       string
	Name     string
	Email    string
	Archived bool
}

// DirectorySource desacopla el feed del paquete accounts (rompe ciclos).
type DirectorySource interface {
	Directory(ctx context.Context) ([]Profile, error)
}

type Repository interface {
	Insert(ctx context.Context, e Entry) error
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
