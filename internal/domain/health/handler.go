package health

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/health-logs", func(hr chi.Router) {
		hr.Get("/", recentLogsHandler(svc))
		hr.Get("/users/{userID}/totals", userTotalsHandler(svc))
	})
}

type recentLogResponse struct {
	Metric    Metric    `json:"metric"`
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name"`
	Reading   string    `json:"reading"`
	Level     Level     `json:"level"`
	CreatedAt time.Time `json:"created_at"`
}

// recentLogsHandler lista lecturas recientes; ?metric=bp|weight|glucose filtra.
func recentLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metric := Metric(strings.TrimSpace(r.URL.Query().Get("metric")))
		if metric != "" && !ValidMetric(metric) {
			http.Error(w, "unknown metric", http.StatusBadRequest)
			return
		}

		logs, err := svc.Recent(r.Context(), metric)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recentLogResponse, 0, len(logs))
		for _, l := range logs {
			out = append(out, recentLogResponse{
				Metric:    l.Metric,
				UserID:    l.UserID,
				UserName:  l.UserName,
				Reading:   l.Reading,
				Level:     l.Level,
				CreatedAt: l.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

type totalsResponse struct {
	BP      int `json:"bp"`
	Weight  int `json:"weight"`
	Glucose int `json:"glucose"`
}

func userTotalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, err := svc.TotalsForUser(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, totalsResponse{BP: t.BP, Weight: t.Weight, Glucose: t.Glucose})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
