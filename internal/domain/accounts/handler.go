package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"instadoc-admin/internal/domain/audit"
	"instadoc-admin/internal/middleware"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/users", func(ur chi.Router) {
		ur.Get("/", listUsersHandler(svc))
		ur.Post("/", createUserHandler(svc))

		ur.Get("/{userID}", getUserHandler(svc))
		ur.Patch("/{userID}", updateUserHandler(svc))

		ur.Post("/{userID}/status", changeStatusHandler(svc))
		ur.Post("/{userID}/archive", archiveUserHandler(svc))
		ur.Post("/{userID}/restore", restoreUserHandler(svc))
	})
}

type accountResponse struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Status    Status    `json:"status"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toAccountResponse(a Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		FullName:  a.FullName,
		Email:     a.Email,
		Role:      a.Role,
		Status:    a.EffectiveStatus(),
		Archived:  a.Archived(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// listUsersHandler lista cuentas con filtros search/role/status.
// status acepta el virtual "archived".
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		items, err := svc.List(r.Context(), Filter{
			Search: q.Get("search"),
			Role:   Role(strings.TrimSpace(q.Get("role"))),
			Status: Status(strings.TrimSpace(q.Get("status"))),
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]accountResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAccountResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type createUserRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	Reason   string `json:"reason"`
}

func createUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, svc)
		if !ok {
			return
		}

		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), actor, CreateInput{
			FullName: req.FullName,
			Email:    req.Email,
			Password: req.Password,
			Role:     req.Role,
			Reason:   req.Reason,
		})
		if err != nil {
			writeAccountError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAccountResponse(a))
	}
}

func getUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.GetByID(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeAccountError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(a))
	}
}

type updateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email"`
	Role     *Role   `json:"role"`
	Reason   string  `json:"reason"`
}

func updateUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, svc)
		if !ok {
			return
		}

		var req updateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.UpdateProfile(r.Context(), actor, chi.URLParam(r, "userID"), UpdateInput{
			FullName: req.FullName,
			Email:    req.Email,
			Role:     req.Role,
			Reason:   req.Reason,
		})
		if err != nil {
			writeAccountError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(a))
	}
}

type changeStatusRequest struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

func changeStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, svc)
		if !ok {
			return
		}

		var req changeStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.ChangeStatus(r.Context(), actor, chi.URLParam(r, "userID"), req.Status, req.Reason)
		if err != nil {
			writeAccountError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(a))
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func archiveUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, svc)
		if !ok {
			return
		}

		var req reasonRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		a, err := svc.Archive(r.Context(), actor, chi.URLParam(r, "userID"), req.Reason)
		if err != nil {
			writeAccountError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(a))
	}
}

func restoreUserHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, svc)
		if !ok {
			return
		}

		var req reasonRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		a, err := svc.Restore(r.Context(), actor, chi.URLParam(r, "userID"), req.Reason)
		if err != nil {
			writeAccountError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAccountResponse(a))
	}
}

// requestActor resuelve el actor de auditoría desde los claims del request.
func requestActor(w http.ResponseWriter, r *http.Request, svc *Service) (actor audit.Actor, ok bool) {
	claims, found := middleware.GetClaims(r.Context())
	if !found || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return actor, false
	}
	actor, err := svc.ActorFor(r.Context(), claims.UserID)
	if err != nil {
		http.Error(w, "forbidden", http.StatusForbidden)
		return actor, false
	}
	return actor, true
}

func writeAccountError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	case errors.Is(err, ErrEmailTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrSelfChange), errors.Is(err, ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrArchived):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
