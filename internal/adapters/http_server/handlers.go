package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"listing_finder/internal/adapters/observability"
	"listing_finder/internal/app"
	"listing_finder/internal/domain"
)

const (
	defaultLocationLimit = 8
	maxLocationLimit     = 50
)

type Handlers struct {
	Q *app.QueryService

	// Default price range applied when a request leaves it open and returned
	// by /v1/filters/defaults.
	PriceMin, PriceMax int64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type listingsResponse struct {
	Count   int                    `json:"count"`
	Message string                 `json:"message"`
	Items   []domain.ScoredListing `json:"items"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/listings", h.listListings)
		r.Get("/listings/{id}", h.getListing)
		r.Get("/filters/defaults", h.filterDefaults)
		r.Get("/search", h.search)
		r.Get("/locations", h.locations)
		r.Get("/map", h.mapPoints)
		r.Get("/mortgage", h.mortgage)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeJSON marshals before writing the header so an unencodable value
// becomes a 500 rather than an empty 200.
func writeJSON(w http.ResponseWriter, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("marshal JSON response failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// ---- query param parsing ----

type paramError struct{ name, want string }

func (e paramError) Error() string { return fmt.Sprintf("%s must be %s", e.name, e.want) }

func intParam(r *http.Request, name string) (*int, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return nil, paramError{name, "a non-negative integer"}
	}
	return &n, nil
}

func int64Param(r *http.Request, name string, def int64) (int64, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, paramError{name, "a non-negative integer"}
	}
	return n, nil
}

func floatParam(r *http.Request, name string, def float64) (float64, error) {
	s := strings.TrimSpace(r.URL.Query().Get(name))
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, paramError{name, "a finite non-negative number"}
	}
	return f, nil
}

// criteriaFrom builds filter criteria on top of the reset state.
func (h *Handlers) criteriaFrom(r *http.Request) (domain.FilterCriteria, error) {
	c := app.ResetCriteria(h.PriceMin, h.PriceMax)

	var err error
	if c.PriceRange[0], err = int64Param(r, "min_price", h.PriceMin); err != nil {
		return c, err
	}
	if c.PriceRange[1], err = int64Param(r, "max_price", h.PriceMax); err != nil {
		return c, err
	}
	if c.PriceRange[0] > c.PriceRange[1] {
		return c, paramError{"min_price", "less than or equal to max_price"}
	}
	if c.MinBedrooms, err = intParam(r, "min_bedrooms"); err != nil {
		return c, err
	}
	if c.MinBathrooms, err = intParam(r, "min_bathrooms"); err != nil {
		return c, err
	}
	for _, f := range strings.Split(r.URL.Query().Get("features"), ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			c.Features[f] = true
		}
	}
	if s := r.URL.Query().Get("sort"); s != "" {
		c.Sort = domain.SortOrder(s)
	}
	return c, nil
}

// ---- handlers ----

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	c, err := h.criteriaFrom(r)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid filter", err.Error())
		return
	}
	res, err := h.Q.Filter(r.Context(), c)
	if err != nil {
		log.Error().Err(err).Msg("filter listings failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load listings")
		return
	}
	observability.ObserveFilter(res.Count)

	items := res.Listings
	if items == nil {
		items = []domain.ScoredListing{}
	}
	writeJSON(w, listingsResponse{
		Count:   res.Count,
		Message: fmt.Sprintf("Found %d properties matching your criteria", res.Count),
		Items:   items,
	})
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	l, err := h.Q.GetListing(r.Context(), id)
	if errors.Is(err, domain.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
		return
	}
	if err != nil {
		log.Error().Err(err).Int64("id", id).Msg("get listing failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load listing")
		return
	}

	etag, body := calcETagAndBody(l)
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getListing body")
	}
}

func (h *Handlers) filterDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, app.ResetCriteria(h.PriceMin, h.PriceMax))
}

func (h *Handlers) search(w http.ResponseWriter, r *http.Request) {
	res, err := h.Q.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		if r.Context().Err() != nil {
			return // client went away
		}
		log.Error().Err(err).Msg("search failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not search listings")
		return
	}
	observability.ObserveSearch(len(res.ExactMatches), len(res.RecommendedMatches))
	writeJSON(w, res)
}

func (h *Handlers) locations(w http.ResponseWriter, r *http.Request) {
	limit := defaultLocationLimit
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > maxLocationLimit {
			writeProblem(w, http.StatusBadRequest, "Invalid limit", fmt.Sprintf("limit must be an integer between 1 and %d", maxLocationLimit))
			return
		}
		limit = l
	}
	out, err := h.Q.SuggestLocations(r.Context(), r.URL.Query().Get("q"), limit)
	if err != nil {
		log.Error().Err(err).Msg("suggest locations failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load locations")
		return
	}
	if out == nil {
		out = []domain.LocationSuggestion{}
	}
	writeJSON(w, out)
}

func (h *Handlers) mapPoints(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.MapPoints(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("map points failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "could not load map points")
		return
	}
	writeJSON(w, out)
}

func (h *Handlers) mortgage(w http.ResponseWriter, r *http.Request) {
	price, err := floatParam(r, "price", app.DefaultMortgagePrice)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid mortgage input", err.Error())
		return
	}
	down, err := floatParam(r, "down_payment", app.DefaultMortgageDownPayment)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid mortgage input", err.Error())
		return
	}
	rate, err := floatParam(r, "rate", app.DefaultMortgageRate)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid mortgage input", err.Error())
		return
	}
	years := app.DefaultMortgageTermYears
	p, err := intParam(r, "years")
	if err != nil || (p != nil && (*p == 0 || *p > app.MaxMortgageTermYears)) {
		writeProblem(w, http.StatusBadRequest, "Invalid mortgage input",
			fmt.Sprintf("years must be an integer between 1 and %d", app.MaxMortgageTermYears))
		return
	}
	if p != nil {
		years = *p
	}
	if down > price {
		writeProblem(w, http.StatusBadRequest, "Invalid mortgage input", "down_payment must not exceed price")
		return
	}
	writeJSON(w, app.NewMortgage(price, down, rate, years))
}
