package hostaway

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

// The Hostaway sandbox account contains no reviews, so the demo runs
// on a bundled feed shaped exactly like the live endpoint's payload.
//
//go:embed mock_reviews.json
var mockFeed []byte

// MockSource serves the embedded feed.
type MockSource struct{}

func NewMockSource() *MockSource { return &MockSource{} }

func (m *MockSource) FetchReviews(_ context.Context) ([]domain.RawReview, error) {
	var env envelope
	if err := json.Unmarshal(mockFeed, &env); err != nil {
		return nil, fmt.Errorf("decode embedded feed: %w", err)
	}
	return env.Result, nil
}

// FallbackSource tries the live API first and falls back to the
// embedded feed when the call fails or comes back empty.
type FallbackSource struct {
	primary  domain.ReviewSource
	fallback domain.ReviewSource
}

func WithFallback(primary, fallback domain.ReviewSource) *FallbackSource {
	return &FallbackSource{primary: primary, fallback: fallback}
}

func (f *FallbackSource) FetchReviews(ctx context.Context) ([]domain.RawReview, error) {
	raws, err := f.primary.FetchReviews(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("upstream feed failed, serving embedded feed")
		return f.fallback.FetchReviews(ctx)
	}
	if len(raws) == 0 {
		log.Info().Msg("upstream feed empty, serving embedded feed")
		return f.fallback.FetchReviews(ctx)
	}
	return raws, nil
}
