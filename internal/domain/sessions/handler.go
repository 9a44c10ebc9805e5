package sessions

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"instadoc-admin/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/login", loginHandler(svc))
		ar.Post("/logout", logoutHandler(svc))
		ar.Get("/session", sessionHandler(svc))
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	SessionID string    `json:"session_id"`
	Account   struct {
		ID       string `json:"id"`
		FullName string `json:"full_name"`
		Email    string `json:"email"`
		Role     string `json:"role"`
	} `json:"account"`
}

// loginHandler emite el token admin. El gate devuelve el motivo exacto
// del rechazo (archived/suspended/admin required) con 403; credenciales
// malas son un 401 genérico.
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		res, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidCredentials):
				http.Error(w, err.Error(), http.StatusUnauthorized)
			case errors.Is(err, ErrAccountArchived),
				errors.Is(err, ErrAccountSuspended),
				errors.Is(err, ErrAdminRequired):
				http.Error(w, err.Error(), http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		var out loginResponse
		out.Token = res.Token
		out.ExpiresAt = res.ExpiresAt
		out.SessionID = res.Session.ID
		out.Account.ID = res.Account.ID
		out.Account.FullName = res.Account.FullName
		out.Account.Email = res.Account.Email
		out.Account.Role = string(res.Account.Role)

		writeJSON(w, http.StatusOK, out)
	}
}

func logoutHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.SessionID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := svc.Logout(r.Context(), claims.SessionID); err != nil && !errors.Is(err, ErrNotFound) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type sessionResponse struct {
	SessionID  string    `json:"session_id"`
	AccountID  string    `json:"account_id"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

func sessionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.SessionID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sess, err := svc.GetByID(r.Context(), claims.SessionID)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{
			SessionID:  sess.ID,
			AccountID:  sess.AccountID,
			Email:      sess.Email,
			CreatedAt:  sess.CreatedAt,
			LastSeenAt: sess.LastSeenAt,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
