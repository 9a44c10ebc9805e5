package stats

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/stats", func(sr chi.Router) {
		sr.Get("/overview", overviewHandler(svc))
		sr.Get("/weekly", weeklyHandler(svc))
	})
}

type overviewResponse struct {
	Users   int `json:"users"`
	BP      int `json:"bp_logs"`
	Weight  int `json:"weight_logs"`
	Glucose int `json:"glucose_logs"`
}

func overviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.Totals(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, overviewResponse{
			Users:   t.Users,
			BP:      t.BP,
			Weight:  t.Weight,
			Glucose: t.Glucose,
		})
	}
}

type dayCountResponse struct {
	Date         string `json:"date"`
	Users        int    `json:"users"`
	Health       int    `json:"health"`
	Tickets      int    `json:"tickets"`
	Appointments int    `json:"appointments"`
}

func weeklyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := svc.Weekly(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dayCountResponse, 0, len(days))
		for _, d := range days {
			out = append(out, dayCountResponse{
				Date:         d.Date,
				Users:        d.Users,
				Health:       d.Health,
				Tickets:      d.Tickets,
				Appointments: d.Appointments,
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
