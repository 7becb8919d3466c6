package mysql

const upsertRecordSQL = `
INSERT INTO moderation_records (review_id, status)
VALUES (?, ?)
ON DUPLICATE KEY UPDATE
  status     = VALUES(status),
  updated_at = CURRENT_TIMESTAMP
`

// Pending is the default state, so a pending write removes the row.
const deleteRecordSQL = `
DELETE FROM moderation_records WHERE review_id = ?
`

const getStatusSQL = `
SELECT status FROM moderation_records WHERE review_id = ?
`

const approvedIDsSQL = `
SELECT review_id FROM moderation_records WHERE status = 'approved' ORDER BY review_id
`

const countRecordsSQL = `
SELECT COUNT(*) FROM moderation_records
`

// CreateTableSQL is applied on startup; the table is tiny and the
// service owns it outright, so no separate migration tooling.
const CreateTableSQL = `
CREATE TABLE IF NOT EXISTS moderation_records (
  review_id  BIGINT NOT NULL PRIMARY KEY,
  status     ENUM('approved','rejected') NOT NULL,
  updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
)
`
