package loginlogs

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/login-logs", listLoginLogsHandler(svc))
}

type loginLogResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// listLoginLogsHandler devuelve los últimos ingresos (máximo 500),
// con el nombre vigente de cada usuario.
func listLoginLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]loginLogResponse, 0, len(items))
		for _, e := range items {
			out = append(out, loginLogResponse{
				ID:         e.ID,
				UserID:     e.UserID,
				FullName:   e.FullName,
				Email:      e.Email,
				Role:       e.Role,
				LoggedInAt: e.LoggedInAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
