package accounts

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

func ValidRole(r Role) bool {
	switch r {
	case RolePatient, RoleDoctor, RoleAdmin:
		return true
	default:
		return false
	}
}

type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended"

	// StatusArchived es virtual: deriva de DeletedAt, no se persiste en status.
	StatusArchived Status = "archived"
)

func ValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}

// BlockPolicy controla la variante del predicado de descalificación:
// InactiveBlocks=true mata la sesión en el próximo tick del watcher;
// false deja inactive como soft block (solo bloquea el próximo login).
type BlockPolicy struct {
	InactiveBlocks bool
}
