// Package httpapi exposes the query evaluator over HTTP: a JSON search
// endpoint and a liveness probe. It is the wire contract to the (out of
// scope) presentation layer — the evaluator's single search call wrapped in
// a thin, chi-routed handler.
package httpapi

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ogsearch/ogsearch/internal/query"
	"github.com/ogsearch/ogsearch/internal/store"
)

// NewRouter wires /search and /healthz against evaluator.
func NewRouter(evaluator *query.Evaluator) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	h := &handlers{evaluator: evaluator}
	r.Get("/search", h.search)
	r.Get("/healthz", h.healthz)

	return r
}

type handlers struct {
	evaluator *query.Evaluator
}

type searchResultJSON struct {
	DocumentID int64  `json:"documentId"`
	URL        string `json:"url"`
	Title      string `json:"title"`
	Score      int64  `json:"score"`
}

// search handles GET /search?q=...&k=...
func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")

	k := 0
	if kParam := r.URL.Query().Get("k"); kParam != "" {
		parsed, err := strconv.Atoi(kParam)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, "k must be a non-negative integer")
			return
		}
		k = parsed
	}

	var (
		results []store.SearchResult
		err     error
	)
	if r.URL.Query().Get("stem") == "1" {
		results, err = h.evaluator.SearchWithStemming(r.Context(), q, k)
	} else {
		results, err = h.evaluator.Search(r.Context(), q, k)
	}
	if err != nil {
		log.Printf("httpapi: search failed for query %q: %v", q, err)
		writeJSONError(w, http.StatusInternalServerError, "search failed")
		return
	}

	out := make([]searchResultJSON, len(results))
	for i, res := range results {
		out[i] = searchResultJSON{
			DocumentID: res.DocumentID,
			URL:        res.URL,
			Title:      res.Title,
			Score:      res.Score,
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"results": out})
}

func (h *handlers) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("httpapi: failed to encode response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
