package tickets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"instadoc-admin/internal/domain/accounts"
	"instadoc-admin/internal/domain/audit"
	"instadoc-admin/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service, actors *accounts.Service) {
	r.Route("/tickets", func(tr chi.Router) {
		tr.Get("/", listTicketsHandler(svc))
		tr.Get("/stats", ticketStatsHandler(svc))

		tr.Get("/{ticketID}", getTicketHandler(svc))
		tr.Post("/{ticketID}/status", setStatusHandler(svc, actors))
		tr.Post("/{ticketID}/priority", setPriorityHandler(svc, actors))
		tr.Post("/{ticketID}/replies", replyHandler(svc, actors))
	})
}

type ticketResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	UserName     string     `json:"user_name"`
	Subject      string     `json:"subject"`
	Body         string     `json:"body"`
	Priority     Priority   `json:"priority"`
	Status       Status     `json:"status"`
	FirstReplyAt *time.Time `json:"first_reply_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func toTicketResponse(t Ticket) ticketResponse {
	return ticketResponse{
		ID:           t.ID,
		UserID:       t.UserID,
		UserName:     t.UserName,
		Subject:      t.Subject,
		Body:         t.Body,
		Priority:     t.Priority,
		Status:       t.Status,
		FirstReplyAt: t.FirstReplyAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func listTicketsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.List(r.Context(), Filter{
			Status:   Status(strings.TrimSpace(q.Get("status"))),
			Priority: Priority(strings.TrimSpace(q.Get("priority"))),
			Search:   q.Get("search"),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]ticketResponse, 0, len(items))
		for _, t := range items {
			out = append(out, toTicketResponse(t))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type ticketDetailResponse struct {
	ticketResponse
	Replies []replyResponse `json:"replies"`
}

type replyResponse struct {
	ID        string    `json:"id"`
	AdminID   string    `json:"admin_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func getTicketHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "ticketID")
		t, err := svc.GetByID(r.Context(), id)
		if err != nil {
			writeTicketError(w, err)
			return
		}

		replies, err := svc.Replies(r.Context(), id)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := ticketDetailResponse{ticketResponse: toTicketResponse(t)}
		out.Replies = make([]replyResponse, 0, len(replies))
		for _, rep := range replies {
			out.Replies = append(out.Replies, replyResponse{
				ID:        rep.ID,
				AdminID:   rep.AdminID,
				Message:   rep.Message,
				CreatedAt: rep.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type setStatusRequest struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

func setStatusHandler(svc *Service, actors *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, actors)
		if !ok {
			return
		}

		var req setStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := svc.SetStatus(r.Context(), actor, chi.URLParam(r, "ticketID"), req.Status, req.Reason)
		if err != nil {
			writeTicketError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(t))
	}
}

type setPriorityRequest struct {
	Priority Priority `json:"priority"`
}

func setPriorityHandler(svc *Service, actors *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, actors)
		if !ok {
			return
		}

		var req setPriorityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		t, err := svc.SetPriority(r.Context(), actor, chi.URLParam(r, "ticketID"), req.Priority)
		if err != nil {
			writeTicketError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toTicketResponse(t))
	}
}

type replyRequest struct {
	Message string `json:"message"`
}

func replyHandler(svc *Service, actors *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, actors)
		if !ok {
			return
		}

		var req replyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rep, err := svc.Reply(r.Context(), actor, chi.URLParam(r, "ticketID"), req.Message)
		if err != nil {
			writeTicketError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, replyResponse{
			ID:        rep.ID,
			AdminID:   rep.AdminID,
			Message:   rep.Message,
			CreatedAt: rep.CreatedAt,
		})
	}
}

type statsResponse struct {
	Total                   int     `json:"total"`
	Open                    int     `json:"open"`
	InProgress              int     `json:"in_progress"`
	Resolved                int     `json:"resolved"`
	AvgFirstResponseMinutes float64 `json:"avg_first_response_minutes"`
}

func ticketStatsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := svc.Stats(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, statsResponse{
			Total:                   st.Total,
			Open:                    st.Open,
			InProgress:              st.InProgress,
			Resolved:                st.Resolved,
			AvgFirstResponseMinutes: st.AvgFirstResponse.Minutes(),
		})
	}
}

func requestActor(w http.ResponseWriter, r *http.Request, actors *accounts.Service) (actor audit.Actor, ok bool) {
	claims, found := middleware.GetClaims(r.Context())
	if !found || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return actor, false
	}
	actor, err := actors.ActorFor(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return actor, false
	}
	return actor, true
}

func writeTicketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "ticket not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
