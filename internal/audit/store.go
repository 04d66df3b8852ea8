// internal/audit/store.go
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"loan-review-console/internal/common/errors"
	"loan-review-console/internal/common/logger"
	"loan-review-console/internal/review"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS review_decisions (
	id               UUID PRIMARY KEY,
	application_id   TEXT NOT NULL,
	action           TEXT NOT NULL,
	resulting_status TEXT NOT NULL,
	meeting_link     TEXT,
	decided_at       TIMESTAMPTZ NOT NULL,
	recorded_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_review_decisions_application
	ON review_decisions (application_id, decided_at DESC);
`

// Entry is one recorded decision, newest first in History results.
type Entry struct {
	ID              string    `json:"id"`
	ApplicationID   string    `json:"applicationId"`
	Action          string    `json:"action"`
	ResultingStatus string    `json:"resultingStatus"`
	MeetingLink     string    `json:"meetingLink,omitempty"`
	DecidedAt       time.Time `json:"decidedAt"`
}

// Store persists decision history in PostgreSQL.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// EnsureSchema creates the decision table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("ensure decision schema: %w", err)
	}
	return nil
}

// RecordDecision appends one decision row.
func (s *Store) RecordDecision(ctx context.Context, d review.Decision) error {
	const insertSQL = `
		INSERT INTO review_decisions (id, application_id, action, resulting_status, meeting_link, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	meetingLink := sql.NullString{String: d.MeetingLink, Valid: d.MeetingLink != ""}

	_, err := s.db.ExecContext(ctx, insertSQL,
		uuid.New().String(), d.ApplicationID, string(d.Action),
		string(d.ResultingStatus), meetingLink, d.DecidedAt,
	)
	if err != nil {
		return errors.NewAuditWriteFailedError(d.ApplicationID, err)
	}

	s.logger.Debug("Decision recorded", map[string]interface{}{
		"applicationId": d.ApplicationID,
		"action":        string(d.Action),
	})

	return nil
}

// History returns the decision trail for one application, newest first.
func (s *Store) History(ctx context.Context, applicationID string) ([]Entry, error) {
	const selectSQL = `
		SELECT id, application_id, action, resulting_status, meeting_link, decided_at
		FROM review_decisions
		WHERE application_id = $1
		ORDER BY decided_at DESC`

	rows, err := s.db.QueryContext(ctx, selectSQL, applicationID)
	if err != nil {
		return nil, errors.NewAuditWriteFailedError(applicationID, err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var entry Entry
		var meetingLink sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ApplicationID, &entry.Action,
			&entry.ResultingStatus, &meetingLink, &entry.DecidedAt); err != nil {
			return nil, errors.NewAuditWriteFailedError(applicationID, err)
		}
		entry.MeetingLink = meetingLink.String
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewAuditWriteFailedError(applicationID, err)
	}

	return entries, nil
}
