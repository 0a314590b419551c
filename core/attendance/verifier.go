package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var nowFunc = time.Now // mockable

// Verifier is the participant side of the check-in protocol: it validates a
// scanned payload, checks enrollment, and consumes the published code exactly
// once.
type Verifier struct {
	store         CodeStore
	enrollment    Enrollment
	names         NameDirectory
	records       RecordWriter
	logger        core.Logger
	marker        string
	lookupTimeout time.Duration
}

func NewVerifier(
	store CodeStore,
	enrollment Enrollment,
	names NameDirectory,
	records RecordWriter,
	logger core.Logger,
	conf *core.Config,
) *Verifier {
	return &Verifier{
		store:         store,
		enrollment:    enrollment,
		names:         names,
		records:       records,
		logger:        logger,
		marker:        conf.Attendance.Marker,
		lookupTimeout: conf.Attendance.LookupTimeout,
	}
}

// Scan runs the whole verification flow for one scanned payload.
//
// Failure modes, in order: ErrInvalidPayload (malformed scan or unsafe
// segment), ErrNotAuthenticated (blank caller), ErrNotEnrolled (also reported
// to the teacher as a Failure event), ErrCodeExpired (lost the race or
// replayed an already-consumed code). All are recoverable; the scanner may
// retry. A successful consumption is never aborted by a failing name lookup
// or record write: those degrade to fallbacks.
func (v *Verifier) Scan(ctx context.Context, callerID, payload string) (Event, error) {
	key, code, err := ParsePayload(v.marker, payload)
	if err != nil {
		return Event{}, err
	}

	if callerID == "" {
		return Event{}, ErrNotAuthenticated
	}

	enrolled, err := v.isEnrolled(ctx, key, callerID)
	if err != nil {
		return Event{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		// attacker-visible telemetry: the teacher sees this live
		ev := Event{
			Kind:          EventFailure,
			ParticipantID: callerID,
			Reason:        "not enrolled",
			At:            nowFunc().UTC(),
		}
		if _, pubErr := v.store.PublishEvent(ctx, key, ev); pubErr != nil {
			v.logger.Warn("publishing failure event", pubErr)
		}
		return ev, ErrNotEnrolled
	}

	// the one operation that must be atomic under concurrent callers
	if err = v.store.ConsumeCode(ctx, key, code); err != nil {
		return Event{}, err
	}

	ev := Event{
		Kind:          EventSuccess,
		ParticipantID: callerID,
		Name:          v.displayName(ctx, callerID),
		At:            nowFunc().UTC(),
	}
	if _, err = v.store.PublishEvent(ctx, key, ev); err != nil {
		// the code is consumed; the broker just won't hear about it
		v.logger.Error("publishing success event", err)
	}
	if err = v.records.WritePresent(ctx, key, callerID, ev.At); err != nil {
		v.logger.Error("writing attendance record", err)
	}
	return ev, nil
}

func (v *Verifier) isEnrolled(ctx context.Context, key SessionKey, callerID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, v.lookupTimeout)
	defer cancel()
	return v.enrollment.IsEnrolled(ctx, key, callerID)
}

// displayName resolves the caller's name, falling back to the raw id so a
// slow directory never blocks attendance.
func (v *Verifier) displayName(ctx context.Context, callerID string) string {
	ctx, cancel := context.WithTimeout(ctx, v.lookupTimeout)
	defer cancel()
	name, err := v.names.DisplayName(ctx, callerID)
	if err != nil || name == "" {
		if err != nil {
			v.logger.Warn("resolving display name", err)
		}
		return callerID
	}
	return name
}
