package assignments

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
	r.Route("/doctors/{doctorID}", func(dr chi.Router) {
		dr.Get("/patients", listAssignedHandler(svc))
		dr.Get("/patients/available", availablePatientsHandler(svc))
		dr.Post("/patients", assignHandler(svc, actors))
		dr.Delete("/patients", unassignAllHandler(svc, actors))
	})
	r.Delete("/assignments/{assignmentID}", unassignHandler(svc, actors))
}

type assignedResponse struct {
	ID           string    `json:"id"`
	DoctorID     string    `json:"doctor_id"`
	PatientID    string    `json:"patient_id"`
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email,omitempty"`
	AssignedAt   time.Time `json:"assigned_at"`
}

func listAssignedHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListByDoctor(r.Context(), chi.URLParam(r, "doctorID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]assignedResponse, 0, len(items))
		for _, a := range items {
			out = append(out, assignedResponse{
				ID:           a.ID,
				DoctorID:     a.DoctorID,
				PatientID:    a.PatientID,
				PatientName:  a.PatientName,
				PatientEmail: a.PatientEmail,
				AssignedAt:   a.AssignedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type availableResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func availablePatientsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.AvailablePatients(r.Context(), chi.URLParam(r, "doctorID"), r.URL.Query().Get("search"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]availableResponse, 0, len(items))
		for _, p := range items {
			out = append(out, availableResponse{ID: p.ID, FullName: p.FullName, Email: p.Email})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type assignRequest struct {
	PatientID string `json:"patient_id"`
	Reason    string `json:"reason"`
}

func assignHandler(svc *Service, actors *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, actors)
		if !ok {
			return
		}

		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Assign(r.Context(), actor, chi.URLParam(r, "doctorID"), req.PatientID, req.Reason)
		if err != nil {
			writeAssignmentError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, assignedResponse{
			ID:         a.ID,
			DoctorID:   a.DoctorID,
			PatientID:  a.PatientID,
			AssignedAt: a.AssignedAt,
		})
	}
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

func unassignHandler(svc *Service, actors *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, actors)
		if !ok {
			return
		}

		var req reasonRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		if err := svc.Unassign(r.Context(), actor, chi.URLParam(r, "assignmentID"), req.Reason); err != nil {
			writeAssignmentError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func unassignAllHandler(svc *Service, actors *accounts.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestActor(w, r, actors)
		if !ok {
			return
		}

		var req reasonRequest
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}

		n, err := svc.UnassignAll(r.Context(), actor, chi.URLParam(r, "doctorID"), req.Reason)
		if err != nil {
			writeAssignmentError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"removed": n})
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

func writeAssignmentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, accounts.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, ErrAlreadyAssigned):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNotDoctor), errors.Is(err, ErrNotPatient):
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
