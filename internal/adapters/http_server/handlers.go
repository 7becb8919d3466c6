// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/dl5214/reviews-management-system/internal/adapters/observability"
	"github.com/dl5214/reviews-management-system/internal/app"
	"github.com/dl5214/reviews-management-system/internal/domain"
)

var validate = validator.New()

type Handlers struct {
	Q     *app.QueryService
	M     *app.ModerationService
	Store domain.ModerationStore
	Auth  *Auth
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Post("/v1/auth/login", h.Auth.Login)
	s.mux.Get("/v1/reviews/hostaway", h.listReviews)
	s.mux.Get("/v1/reviews/public", h.publicReviews)
	s.mux.Get("/v1/analytics/weekly", h.weekly)
	s.mux.Get("/v1/rollups/channels", h.channelRollups)
	s.mux.Get("/v1/rollups/properties", h.propertyRollups)

	// moderation mutations sit behind the manager session
	s.mux.Group(func(r chi.Router) {
		r.Use(h.Auth.Require)
		r.Post("/v1/reviews/moderation", h.moderateOne)
		r.Put("/v1/reviews/moderation", h.moderateMany)
	})
}

// ---- response envelope ----

type envelope struct {
	Status  string `json:"status"`
	Result  any    `json:"result,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Status: "error", Message: msg}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

// serviceError maps core errors onto the boundary contract: validation
// failures are the caller's fault, everything else is ours.
func serviceError(w http.ResponseWriter, err error) {
	if domain.IsValidation(err) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Error().Err(err).Msg("request failed")
	writeError(w, http.StatusInternalServerError, "internal error")
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

// writeSuccess writes the {status, result, meta} envelope with a weak
// ETag, honoring If-None-Match.
func writeSuccess(w http.ResponseWriter, r *http.Request, result, meta any) {
	etag, body := calcETagAndBody(envelope{Status: "success", Result: result, Meta: meta})
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

// ---- read side ----

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q, err := parseReviewsQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	page, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeSuccess(w, r, page.Items, page.Meta)
}

func parseReviewsQuery(r *http.Request) (domain.ReviewsQuery, error) {
	qs := r.URL.Query()
	q := domain.ReviewsQuery{
		Type:      qs.Get("type"),
		ListingID: qs.Get("listingId"),
		Channel:   qs.Get("channel"),
		SortBy:    domain.SortField(qs.Get("sortBy")),
		SortOrder: domain.SortOrder(qs.Get("sortOrder")),
	}
	if q.SortBy == "" {
		q.SortBy = domain.SortSubmittedAt
	}
	if q.SortOrder == "" {
		q.SortOrder = domain.SortDesc
	}

	for _, bound := range []struct {
		key string
		dst **float64
	}{
		{"minRating", &q.MinRating},
		{"maxRating", &q.MaxRating},
	} {
		if v := qs.Get(bound.key); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return q, domain.Invalid(bound.key, "must be a number")
			}
			*bound.dst = &f
		}
	}

	if v := qs.Get("approvalStatus"); v != "" {
		st := domain.ApprovalStatus(v)
		if !st.Valid() {
			return q, domain.Invalid("approvalStatus", "must be one of approved, pending, rejected")
		}
		q.ApprovalStatus = st
	}
	if v := qs.Get("dateFrom"); v != "" {
		q.DateFrom = &v
	}
	if v := qs.Get("dateTo"); v != "" {
		q.DateTo = &v
	}
	return q, nil
}

func (h *Handlers) publicReviews(w http.ResponseWriter, r *http.Request) {
	items, err := h.Q.PublicReviews(r.Context(), r.URL.Query().Get("listingId"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeSuccess(w, r, items, map[string]int{"total": len(items)})
}

func (h *Handlers) weekly(w http.ResponseWriter, r *http.Request) {
	reviewType := r.URL.Query().Get("type")
	if reviewType == "" {
		reviewType = domain.TypeGuestToHost
	}
	buckets, err := h.Q.Weekly(r.Context(), reviewType)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeSuccess(w, r, buckets, nil)
}

func (h *Handlers) channelRollups(w http.ResponseWriter, r *http.Request) {
	rollups, err := h.Q.Channels(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeSuccess(w, r, rollups, nil)
}

func (h *Handlers) propertyRollups(w http.ResponseWriter, r *http.Request) {
	rollups, err := h.Q.Properties(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeSuccess(w, r, rollups, nil)
}

// ---- moderation ----

type moderateOneRequest struct {
	ReviewID *int64 `json:"reviewId" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=approved pending rejected"`
}

func (h *Handlers) moderateOne(w http.ResponseWriter, r *http.Request) {
	var req moderateOneRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		if req.ReviewID == nil {
			writeError(w, http.StatusBadRequest, "reviewId must be a number")
			return
		}
		writeError(w, http.StatusBadRequest, "status must be one of approved, pending, rejected")
		return
	}

	newStatus, err := h.M.UpdateOne(r.Context(), *req.ReviewID, domain.ApprovalStatus(req.Status))
	if err != nil {
		serviceError(w, err)
		return
	}
	h.observeStore(r, string(newStatus), 1)

	writeSuccess(w, r, map[string]any{"reviewId": *req.ReviewID, "status": newStatus}, nil)
}

type moderateManyRequest struct {
	ReviewIDs *[]int64 `json:"reviewIds" validate:"required"`
	Status    string   `json:"status" validate:"required,oneof=approved pending rejected"`
}

func (h *Handlers) moderateMany(w http.ResponseWriter, r *http.Request) {
	var req moderateManyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		if req.ReviewIDs == nil {
			writeError(w, http.StatusBadRequest, "reviewIds must be an array")
			return
		}
		writeError(w, http.StatusBadRequest, "status must be one of approved, pending, rejected")
		return
	}

	if err := h.M.UpdateMany(r.Context(), *req.ReviewIDs, domain.ApprovalStatus(req.Status)); err != nil {
		serviceError(w, err)
		return
	}
	h.observeStore(r, req.Status, len(*req.ReviewIDs))

	writeSuccess(w, r, map[string]any{"reviewIds": *req.ReviewIDs, "status": req.Status}, nil)
}

func (h *Handlers) observeStore(r *http.Request, status string, n int) {
	count, err := h.Store.Count(r.Context())
	if err != nil {
		count = 0
	}
	observability.ObserveModeration(status, n, count)
}
