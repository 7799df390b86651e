package feed_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"listing_finder/internal/adapters/feed"
	"listing_finder/internal/domain"
)

func TestClient_GetListing_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": 8, "title": "Urban Loft"})
		}
	}))
	defer ts.Close()

	cl, err := feed.New(ts.URL, "test-key", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.GetListing(ctx, 8)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["title"] != "Urban Loft" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_GetListing_404(t *testing.T) {
	var paths []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		http.NotFound(w, r)
	}))
	defer ts.Close()

	cl, _ := feed.New(ts.URL, "", 100)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	_, err := cl.GetListing(ctx, 1)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected domain.ErrNotFound, got %v", err)
	}
	if !reflect.DeepEqual(paths, []string{"/listings/1", "/listing/1"}) {
		t.Fatalf("expected fallback to legacy path, got %v", paths)
	}
}

func TestClient_ListIDs(t *testing.T) {
	for name, body := range map[string]string{
		"bare":    `[3, 1, 2]`,
		"wrapped": `{"ids": [3, 1, 2]}`,
	} {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer ts.Close()

			cl, _ := feed.New(ts.URL, "", 100)
			ids, err := cl.ListIDs(context.Background())
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !reflect.DeepEqual(ids, []int64{3, 1, 2}) {
				t.Fatalf("unexpected ids: %v", ids)
			}
		})
	}
}

func TestClient_Forbidden(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	cl, _ := feed.New(ts.URL, "k", 100)
	if _, err := cl.GetListing(context.Background(), 1); !errors.Is(err, feed.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestNew_RequiresBase(t *testing.T) {
	if _, err := feed.New("", "k", 1); err == nil {
		t.Fatalf("expected error for empty base URL")
	}
}

func TestClient_UnexpectedStatusIsFinal(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer ts.Close()

	cl, _ := feed.New(ts.URL, "", 100)
	_, err := cl.GetListing(context.Background(), 1)

	var se *feed.StatusError
	if !errors.As(err, &se) || se.Code != http.StatusTeapot || se.Body != "short and stout" {
		t.Fatalf("expected StatusError 418, got %v", err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected a single call, got %d", hits)
	}
}
