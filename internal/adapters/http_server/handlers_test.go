package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpserver "github.com/dl5214/reviews-management-system/internal/adapters/http_server"
	"github.com/dl5214/reviews-management-system/internal/app"
	"github.com/dl5214/reviews-management-system/internal/domain"
	memstore "github.com/dl5214/reviews-management-system/internal/storage/memory"
)

func pfloat(f float64) *float64 { return &f }
func pint64(i int64) *int64     { return &i }
func pstr(s string) *string     { return &s }

type stubSource struct{ raws []domain.RawReview }

func (s *stubSource) FetchReviews(context.Context) ([]domain.RawReview, error) {
	return s.raws, nil
}

func testFeed() []domain.RawReview {
	return []domain.RawReview{
		{
			ID: 1, Type: domain.TypeGuestToHost, Status: domain.StatusPublished,
			Rating: pfloat(9), PublicReview: "great stay",
			SubmittedAt: "2024-09-02 10:00:00", GuestName: "Maria",
			ListingName: "2B N1 A - 29 Shoreditch Heights",
			ListingID:   pint64(101), ChannelName: pstr("Airbnb"),
		},
		{
			ID: 2, Type: domain.TypeGuestToHost, Status: domain.StatusPublished,
			Rating: pfloat(6), PublicReview: "fine",
			SubmittedAt: "2024-09-05 10:00:00", GuestName: "Tom",
			ListingName: "Studio C - Camden Lock",
			ListingID:   pint64(102), ChannelName: pstr("Booking.com"),
		},
	}
}

func newTestHandlers(store domain.ModerationStore) *httpserver.Handlers {
	norm := app.NewNormalizer(app.ExcludeNone)
	q := app.NewQueryService(&stubSource{raws: testFeed()}, store, nil, 5*time.Minute, norm)
	return &httpserver.Handlers{
		Q:     q,
		M:     app.NewModerationService(store),
		Store: store,
		Auth:  httpserver.NewAuth("test-secret", "demo", "demo"),
	}
}

func newTestMux(store domain.ModerationStore) http.Handler {
	s := httpserver.New()
	s.MountHandlers(newTestHandlers(store))
	return s.Mux()
}

func doJSON(t *testing.T, mux http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result"`
	Meta    json.RawMessage `json:"meta"`
	Message string          `json:"message"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}

func login(t *testing.T, mux http.Handler) []*http.Cookie {
	t.Helper()
	rr := doJSON(t, mux, "POST", "/v1/auth/login", `{"username":"demo","password":"demo"}`, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status %d: %s", rr.Code, rr.Body.String())
	}
	cookies := rr.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login must set a session cookie")
	}
	return cookies
}

// ---- reads ----

func TestListReviews_EnvelopeAndETag(t *testing.T) {
	mux := newTestMux(memstore.New())

	rr := doJSON(t, mux, "GET", "/v1/reviews/hostaway", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	if env.Status != "success" {
		t.Fatalf("want success envelope, got %+v", env)
	}
	var items []domain.NormalizedReview
	if err := json.Unmarshal(env.Result, &items); err != nil {
		t.Fatalf("result: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 reviews, got %d", len(items))
	}

	etag := rr.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("missing ETag header")
	}
	req := httptest.NewRequest("GET", "/v1/reviews/hostaway", nil)
	req.Header.Set("If-None-Match", etag)
	rr2 := httptest.NewRecorder()
	mux.ServeHTTP(rr2, req)
	if rr2.Code != http.StatusNotModified {
		t.Fatalf("want 304 on matching ETag, got %d", rr2.Code)
	}
}

func TestListReviews_BadQueryParams(t *testing.T) {
	mux := newTestMux(memstore.New())

	cases := []struct {
		name, path, msg string
	}{
		{"minRating", "/v1/reviews/hostaway?minRating=abc", "minRating must be a number"},
		{"maxRating", "/v1/reviews/hostaway?maxRating=five", "maxRating must be a number"},
		{"approvalStatus", "/v1/reviews/hostaway?approvalStatus=maybe", "approvalStatus must be one of approved, pending, rejected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, mux, "GET", tc.path, "", nil)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
			}
			env := decodeEnvelope(t, rr)
			if env.Status != "error" || env.Message != tc.msg {
				t.Fatalf("want %q, got %+v", tc.msg, env)
			}
		})
	}
}

func TestHealthz(t *testing.T) {
	mux := newTestMux(memstore.New())
	rr := doJSON(t, mux, "GET", "/healthz", "", nil)
	if rr.Code != http.StatusOK || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}
}

// ---- moderation ----

func TestModeration_RequiresSession(t *testing.T) {
	mux := newTestMux(memstore.New())

	rr := doJSON(t, mux, "POST", "/v1/reviews/moderation", `{"reviewId":1,"status":"approved"}`, nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 without cookie, got %d", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Message != "login required" {
		t.Fatalf("unexpected message: %+v", env)
	}

	// a garbage cookie is rejected too
	bad := []*http.Cookie{{Name: "session", Value: "not-a-token"}}
	rr = doJSON(t, mux, "POST", "/v1/reviews/moderation", `{"reviewId":1,"status":"approved"}`, bad)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("want 401 for bad token, got %d", rr.Code)
	}
}

func TestModerateOne_ValidationMessages(t *testing.T) {
	mux := newTestMux(memstore.New())
	cookies := login(t, mux)

	cases := []struct {
		name, body, msg string
	}{
		{"missing id", `{"status":"approved"}`, "reviewId must be a number"},
		{"bad status", `{"reviewId":1,"status":"maybe"}`, "status must be one of approved, pending, rejected"},
		{"bad json", `{`, "invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rr := doJSON(t, mux, "POST", "/v1/reviews/moderation", tc.body, cookies)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
			}
			if env := decodeEnvelope(t, rr); env.Message != tc.msg {
				t.Fatalf("want %q, got %q", tc.msg, env.Message)
			}
		})
	}
}

func TestModerateMany_ValidationMessages(t *testing.T) {
	mux := newTestMux(memstore.New())
	cookies := login(t, mux)

	rr := doJSON(t, mux, "PUT", "/v1/reviews/moderation", `{"status":"approved"}`, cookies)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if env := decodeEnvelope(t, rr); env.Message != "reviewIds must be an array" {
		t.Fatalf("unexpected message: %+v", env)
	}
}

func TestModerationFlow_WriteThenRead(t *testing.T) {
	store := memstore.New()
	mux := newTestMux(store)
	cookies := login(t, mux)

	rr := doJSON(t, mux, "POST", "/v1/reviews/moderation", `{"reviewId":1,"status":"approved"}`, cookies)
	if rr.Code != http.StatusOK {
		t.Fatalf("moderate: %d %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	var res struct {
		ReviewID int64  `json:"reviewId"`
		Status   string `json:"status"`
	}
	if err := json.Unmarshal(env.Result, &res); err != nil {
		t.Fatalf("result: %v", err)
	}
	if res.ReviewID != 1 || res.Status != "approved" {
		t.Fatalf("unexpected result: %+v", res)
	}

	// the decision shows up on the next dashboard read
	rr = doJSON(t, mux, "GET", "/v1/reviews/hostaway?approvalStatus=approved", "", nil)
	env = decodeEnvelope(t, rr)
	var items []domain.NormalizedReview
	if err := json.Unmarshal(env.Result, &items); err != nil {
		t.Fatalf("result: %v", err)
	}
	if len(items) != 1 || items[0].ID != 1 {
		t.Fatalf("want only review 1 approved, got %+v", items)
	}

	// bulk reset back to pending
	rr = doJSON(t, mux, "PUT", "/v1/reviews/moderation", `{"reviewIds":[1],"status":"pending"}`, cookies)
	if rr.Code != http.StatusOK {
		t.Fatalf("bulk: %d %s", rr.Code, rr.Body.String())
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Fatalf("pending reset must clear records, got %d", n)
	}
}
