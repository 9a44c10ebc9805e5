package audit

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

const listLimit = 200

func RegisterRoutes(r chi.Router, repo Repository) {
	r.Get("/audit-logs", listAuditLogsHandler(repo))
}

type auditLogResponse struct {
	ID           string    `json:"id"`
	AdminID      string    `json:"admin_id"`
	TargetUserID string    `json:"target_user_id,omitempty"`
	Module       string    `json:"module"`
	Action       string    `json:"action"`
	Description  string    `json:"description"`
	Reason       string    `json:"reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func listAuditLogsHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := repo.ListRecent(r.Context(), listLimit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]auditLogResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, auditLogResponse{
				ID:           e.ID,
				AdminID:      e.AdminID,
				TargetUserID: e.TargetUserID,
				Module:       e.Module,
				Action:       e.Action,
				Description:  e.Description,
				Reason:       e.Reason,
				CreatedAt:    e.CreatedAt,
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
