package activity

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, agg *Aggregator) {
	r.Route("/activity", func(ar chi.Router) {
		ar.Get("/feed", feedHandler(agg))
		ar.Post("/refresh", refreshHandler(agg))
	})
}

type feedResponse struct {
	Items       []Item    `json:"items"`
	Remaining   int       `json:"remaining"`
	Pages       int       `json:"pages"`
	RefreshedAt time.Time `json:"refreshed_at"`
}

// feedHandler devuelve las primeras ?pages=N páginas acumuladas del feed
// y cuántos items quedan para "load more".
func feedHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pages := 1
		if v := r.URL.Query().Get("pages"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				pages = n
			}
		}

		items, remaining, err := agg.Page(r.Context(), pages)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, feedResponse{
			Items:       items,
			Remaining:   remaining,
			Pages:       pages,
			RefreshedAt: agg.RefreshedAt(),
		})
	}
}

// refreshHandler fuerza la reconstrucción de la cache (botón refresh).
func refreshHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := agg.Refresh(r.Context()); err != nil {
			http.Error(w, "refresh failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"refreshed_at": agg.RefreshedAt(),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
