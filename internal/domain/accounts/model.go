package accounts

import "time"

// Account es el perfil de un usuario de la plataforma (paciente, doctor o admin).
// El soft-delete va en DeletedAt: una cuenta archivada queda bloqueada sin
// importar status/role hasta que se restaure.
type Account struct {
	ID string

	FullName string
	Email    string

	Role   Role
	Status Status

	// Hash bcrypt de la contraseña. Nunca sale por la API.
	PasswordHash string

	DeletedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Account) Archived() bool {
	return a.DeletedAt != nil
}

// EffectiveStatus colapsa el soft-delete al status virtual "archived".
func (a Account) EffectiveStatus() Status {
	if a.Archived() {
		return StatusArchived
	}
	if a.Status == "" {
		return StatusActive
	}
	return a.Status
}

func (a Account) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	if a.Email != "" {
		return a.Email
	}
	return "Unknown"
}

// AdminSessionBlocked es el predicado de descalificación de una sesión admin.
// Archived domina todo; suspended bloquea siempre; inactive según policy;
// cualquier role distinto de admin bloquea.
func AdminSessionBlocked(a Account, p BlockPolicy) bool {
	if a.Archived() {
		return true
	}
	if a.Status == StatusSuspended {
		return true
	}
	if a.Status == StatusInactive && p.InactiveBlocks {
		return true
	}
	return a.Role != RoleAdmin
}
