package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/attendance"
)

// attendanceStore implements the verifier's external collaborators backed by
// the relational store: the enrollment membership test, the display-name
// directory and the attendance record writer.
type attendanceStore struct {
	db *sqlx.DB
}

var (
	_ attendance.Enrollment    = (*attendanceStore)(nil)
	_ attendance.NameDirectory = (*attendanceStore)(nil)
	_ attendance.RecordWriter  = (*attendanceStore)(nil)
)

func NewAttendanceStore(db *sqlx.DB) *attendanceStore {
	return &attendanceStore{db: db}
}

func (s *attendanceStore) IsEnrolled(ctx context.Context, key attendance.SessionKey, participantID string) (bool, error) {
	var enrolled bool
	err := s.db.GetContext(ctx, &enrolled, `
SELECT EXISTS (
    SELECT 1 FROM enrollment
    WHERE year = $1 AND term = $2 AND subject_id = $3 AND participant_id = $4
)`,
		key.Year, key.Term, key.SubjectID, participantID,
	)
	return enrolled, errors.Wrap(err, "checking enrollment")
}

func (s *attendanceStore) DisplayName(ctx context.Context, participantID string) (string, error) {
	var name string
	err := s.db.GetContext(ctx, &name, `SELECT name FROM participant WHERE id = $1`, participantID)
	if err == sql.ErrNoRows {
		return "", nil // caller falls back to the raw id
	}
	return name, errors.Wrap(err, "resolving display name")
}

// WritePresent is an upsert keyed by (session, participant, date): replaying
// a write for the same day never yields a second record.
func (s *attendanceStore) WritePresent(ctx context.Context, key attendance.SessionKey, participantID string, at time.Time) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO attendance_record (year, term, subject_id, participant_id, on_date, present, recorded_at)
VALUES ($1, $2, $3, $4, $5, TRUE, $6)
ON CONFLICT (year, term, subject_id, participant_id, on_date)
DO UPDATE SET present = TRUE, recorded_at = EXCLUDED.recorded_at`,
		key.Year, key.Term, key.SubjectID, participantID, at.UTC().Format("2006-01-02"), at.UTC(),
	)
	return errors.Wrap(err, "writing attendance record")
}
