package app

import (
	"context"
	"strconv"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

// Project joins normalized review data with the current moderation
// status. Pure join: one store lookup per review, no filtering, output
// order matches input order.
func (n *Normalizer) Project(ctx context.Context, raws []domain.RawReview, store domain.ModerationStore) ([]domain.NormalizedReview, error) {
	out := make([]domain.NormalizedReview, 0, len(raws))
	for _, raw := range raws {
		status, err := store.GetStatus(ctx, raw.ID)
		if err != nil {
			return nil, err
		}

		listingID := "unknown"
		if raw.ListingID != nil {
			listingID = strconv.FormatInt(*raw.ListingID, 10)
		}
		channel := "Direct"
		if raw.ChannelName != nil && *raw.ChannelName != "" {
			channel = *raw.ChannelName
		}

		out = append(out, domain.NormalizedReview{
			ID:             raw.ID,
			Type:           raw.Type,
			Status:         raw.Status,
			Rating:         raw.Rating,
			AverageRating:  n.AverageRating(raw),
			PublicReview:   raw.PublicReview,
			Categories:     n.Categories(raw),
			SubmittedAt:    raw.SubmittedAt,
			GuestName:      raw.GuestName,
			ListingID:      listingID,
			ListingName:    raw.ListingName,
			Channel:        channel,
			ApprovalStatus: status,
		})
	}
	return out, nil
}
