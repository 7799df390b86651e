package httpserver_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	httpserver "listing_finder/internal/adapters/http_server"
)

func TestLogger_RecordsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	r := chi.NewRouter()
	r.Use(httpserver.Logger(zerolog.New(&buf)))
	r.Get("/v1/listings/{id}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/listings/42?x=1", nil))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if line["route"] != "/v1/listings/{id}" || line["query"] != "x=1" {
		t.Fatalf("unexpected route fields: %v", line)
	}
	if line["status"] != float64(500) || line["level"] != "error" {
		t.Fatalf("expected error level for 500, got %v", line)
	}
}
