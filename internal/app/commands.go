package app

import (
	"context"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

// ModerationService is the write side: single and bulk status updates
// against the moderation store. Unknown ids are never an error; a
// review with no record is simply pending.
type ModerationService struct {
	store domain.ModerationStore
}

func NewModerationService(store domain.ModerationStore) *ModerationService {
	return &ModerationService{store: store}
}

// UpdateOne sets one review's status and returns the new status.
// Idempotent when re-applied with the same target status.
func (s *ModerationService) UpdateOne(ctx context.Context, id int64, status domain.ApprovalStatus) (domain.ApprovalStatus, error) {
	if !status.Valid() {
		return "", domain.Invalid("status", "must be one of approved, pending, rejected")
	}
	if err := s.store.SetStatus(ctx, id, status); err != nil {
		return "", err
	}
	return status, nil
}

// UpdateMany applies one status to every id in the sequence. Not
// atomic across ids; a store failure leaves a prefix applied.
func (s *ModerationService) UpdateMany(ctx context.Context, ids []int64, status domain.ApprovalStatus) error {
	if !status.Valid() {
		return domain.Invalid("status", "must be one of approved, pending, rejected")
	}
	return s.store.BulkSetStatus(ctx, ids, status)
}
