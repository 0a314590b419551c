package attendance

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrInvalidPayload   = errors.New("invalid payload")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrNotEnrolled      = errors.New("not enrolled")
	ErrCodeExpired      = errors.New("code expired")
	ErrSessionClosed    = errors.New("session closed")
)

// SessionKey identifies one live check-in window: one subject in one term of
// one school year. Its segments double as key-space segments in the shared
// store, so each must be a valid key segment.
type SessionKey struct {
	Year      string `json:"year"`
	Term      string `json:"term"`
	SubjectID string `json:"subject_id"`
}

func (k SessionKey) String() string {
	return strings.Join([]string{k.Year, k.Term, k.SubjectID}, ":")
}

type EventKind string

const (
	EventSuccess EventKind = "success"
	EventFailure EventKind = "failure"
)

// Event is one scan outcome, published transiently for the teacher's device.
// Each event supersedes the previous one.
type Event struct {
	Kind          EventKind `json:"kind"`
	ParticipantID string    `json:"participant_id,omitempty"`
	Name          string    `json:"name,omitempty"`
	Reason        string    `json:"reason,omitempty"` // failures only
	Duplicate     bool      `json:"duplicate,omitempty"`
	At            time.Time `json:"at"`
}

type (
	// CodeStore is the shared, synchronized key space both protocol ends
	// talk to. Implementations must make ConsumeCode a single atomic
	// compare-and-swap; a separate read then write is a correctness bug.
	CodeStore interface {
		// PublishCode overwrites the session's current code.
		PublishCode(ctx context.Context, key SessionKey, code string) error
		// ConsumeCode clears the published code iff it equals code, as one
		// atomic operation. Returns ErrCodeExpired when the stored value
		// differs or is already empty.
		ConsumeCode(ctx context.Context, key SessionKey, code string) error
		// PublishEvent replaces the session's last scan outcome.
		PublishEvent(ctx context.Context, key SessionKey, ev Event) (seq int64, err error)
		// LastEvent returns the latest event if its sequence number is
		// greater than sinceSeq, else nil.
		LastEvent(ctx context.Context, key SessionKey, sinceSeq int64) (*Event, int64, error)
		// ClearSession removes the session's code and event state.
		ClearSession(ctx context.Context, key SessionKey) error
	}

	// Enrollment is the external membership test.
	Enrollment interface {
		IsEnrolled(ctx context.Context, key SessionKey, participantID string) (bool, error)
	}

	// NameDirectory resolves display names; callers fall back to the raw
	// participant id when it fails.
	NameDirectory interface {
		DisplayName(ctx context.Context, participantID string) (string, error)
	}

	// RecordWriter persists one "present" mark. Writes are upserts keyed by
	// (session, participant, date): replaying a write never yields a second
	// record.
	RecordWriter interface {
		WritePresent(ctx context.Context, key SessionKey, participantID string, at time.Time) error
	}
)
