package auth

import "context"

// TokenVerifier verifica un token de sesión y devuelve claims o error.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// SessionRevoker revoca sesiones contra el identity provider hosteado.
// Es best-effort: los callers tragan el error (puede fallar por privilegios).
type SessionRevoker interface {
	RevokeSessions(ctx context.Context, accountID string) error
}
