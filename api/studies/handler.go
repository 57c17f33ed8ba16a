// Package studies exposes stored study results over HTTP.
package studies

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/results"
)

// NewHandler returns a handler serving GET /api/studies and
// GET /api/studies/{id}. Requests must include an Authorization header with
// "Bearer <token>" when token is non-empty.
func NewHandler(store results.Store, token string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/studies", func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		list, err := store.List(r.Context(), q)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("summary") == "true" {
			for i := range list {
				list[i].Table = nil
			}
		}
		writeJSON(w, list)
	})
	mux.HandleFunc("GET /api/studies/{id}", func(w http.ResponseWriter, r *http.Request) {
		list, err := store.Get(r.Context(), r.PathValue("id"))
		switch {
		case errors.Is(err, results.ErrNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, list)
	})
	return requireToken(token, mux)
}

func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+token {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func parseQuery(r *http.Request) (results.Query, error) {
	v := r.URL.Query()
	q := results.Query{Name: v.Get("name")}
	if s := v.Get("start"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.Start = t
	}
	if s := v.Get("end"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return q, err
		}
		q.End = t
	}
	if s := v.Get("fault_type"); s != "" {
		ft, err := device.ParseFaultType(s)
		if err != nil {
			return q, err
		}
		q.FaultType = ft
	}
	if s := v.Get("failures"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, err
		}
		q.FailuresOnly = b
	}
	return q, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
