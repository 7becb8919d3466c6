package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dl5214/reviews-management-system/internal/domain"
)

// Store is the database-backed moderation store, for deployments that
// want decisions to survive restarts. Same contract as the in-memory
// store: absence of a row reads as pending.
type Store struct{ db *sql.DB }

func New(db *sql.DB) *Store { return &Store{db: db} }

// Init creates the backing table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, CreateTableSQL); err != nil {
		return fmt.Errorf("create moderation_records: %w", err)
	}
	return nil
}

func (s *Store) GetStatus(ctx context.Context, id int64) (domain.ApprovalStatus, error) {
	var st string
	err := s.db.QueryRowContext(ctx, getStatusSQL, id).Scan(&st)
	if err == sql.ErrNoRows {
		return domain.Pending, nil
	}
	if err != nil {
		return "", err
	}
	return domain.ApprovalStatus(st), nil
}

func (s *Store) SetStatus(ctx context.Context, id int64, status domain.ApprovalStatus) error {
	if status == domain.Pending {
		_, err := s.db.ExecContext(ctx, deleteRecordSQL, id)
		return err
	}
	_, err := s.db.ExecContext(ctx, upsertRecordSQL, id, string(status))
	return err
}

func (s *Store) BulkSetStatus(ctx context.Context, ids []int64, status domain.ApprovalStatus) error {
	// per-id apply, prefix semantics on failure
	for _, id := range ids {
		if err := s.SetStatus(ctx, id, status); err != nil {
			return fmt.Errorf("bulk set %d: %w", id, err)
		}
	}
	return nil
}

func (s *Store) ApprovedIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, approvedIDsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, countRecordsSQL).Scan(&n)
	return n, err
}
