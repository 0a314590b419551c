package notify

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/grade"
	"github.com/trezcool/ratiba/core/schedule"
)

type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeEdited  ChangeKind = "edited"
	ChangeRemoved ChangeKind = "removed"
)

// Alert is one one-shot change notification.
type Alert struct {
	Kind     ChangeKind `json:"kind"`
	Category string     `json:"category"` // "cancellation" | "grade"
	Text     string     `json:"text"`
}

// fingerprints maps record IDs to a hash of their visible fields. Diffing
// typed IDs-with-hash avoids the false negatives a concatenated-string
// fingerprint gets from separator collisions.
type fingerprints map[uuid.UUID]snap

type snap struct {
	hash uint64
	text string
}

// changeDetector remembers the previous snapshot of cancellations and grades
// and reports what changed since. The first snapshot only primes the
// baseline: it never raises alerts for pre-existing records.
type changeDetector struct {
	primed        bool
	cancellations fingerprints
	grades        fingerprints
}

// detect diffs the given records against the previous tick's snapshot.
// Only cancellations overlapping `today` are considered.
func (d *changeDetector) detect(today time.Time, cancellations []schedule.Cancellation, grades []grade.Grade) []Alert {
	currCancels := cancellationFingerprints(today, cancellations)
	currGrades := gradeFingerprints(grades)

	var alerts []Alert
	if d.primed {
		alerts = append(alerts, diff("cancellation", d.cancellations, currCancels)...)
		alerts = append(alerts, diff("grade", d.grades, currGrades)...)
	}

	d.cancellations = currCancels
	d.grades = currGrades
	d.primed = true
	return alerts
}

func diff(category string, prev, curr fingerprints) []Alert {
	var alerts []Alert
	for id, s := range curr {
		old, ok := prev[id]
		switch {
		case !ok:
			alerts = append(alerts, Alert{Kind: ChangeAdded, Category: category, Text: s.text})
		case old.hash != s.hash:
			alerts = append(alerts, Alert{Kind: ChangeEdited, Category: category, Text: s.text})
		}
	}
	for id, s := range prev {
		if _, ok := curr[id]; !ok {
			alerts = append(alerts, Alert{Kind: ChangeRemoved, Category: category, Text: s.text})
		}
	}
	return alerts
}

func cancellationFingerprints(today time.Time, recs []schedule.Cancellation) fingerprints {
	fps := make(fingerprints, len(recs))
	for _, rec := range recs {
		if !cancellationCovers(rec, today) {
			continue
		}
		text := fmt.Sprintf("day off %s", rec.DateFrom)
		if rec.DateTo != "" && rec.DateTo != rec.DateFrom {
			text += "–" + rec.DateTo
		}
		if rec.TimeFrom != "" || rec.TimeTo != "" {
			text += fmt.Sprintf(" (%s–%s)", rec.TimeFrom, rec.TimeTo)
		}
		if rec.Note != "" {
			text += ": " + rec.Note
		}
		fps[rec.ID] = snap{
			hash: hashFields(rec.OwnerID, rec.DateFrom, rec.DateTo, rec.TimeFrom, rec.TimeTo, rec.Note),
			text: text,
		}
	}
	return fps
}

func cancellationCovers(rec schedule.Cancellation, today time.Time) bool {
	from, err := schedule.ParseDate(rec.DateFrom)
	if err != nil {
		return false // malformed record, skip
	}
	to := from
	if rec.DateTo != "" {
		if to, err = schedule.ParseDate(rec.DateTo); err != nil {
			return false
		}
	}
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(from) && !day.After(to)
}

func gradeFingerprints(grades []grade.Grade) fingerprints {
	fps := make(fingerprints, len(grades))
	for _, g := range grades {
		fps[g.ID] = snap{
			hash: hashFields(
				g.StudentID, g.SubjectID, g.Label,
				fmt.Sprintf("%g/%g", g.Points, g.MaxPoints),
			),
			text: fmt.Sprintf("%s: %s %g/%g", g.SubjectName, g.Label, g.Points, g.MaxPoints),
		}
	}
	return fps
}

// hashFields hashes each field length-prefixed, so field boundaries survive.
func hashFields(fields ...string) uint64 {
	h := fnv.New64a()
	for _, f := range fields {
		_, _ = fmt.Fprintf(h, "%d:%s", len(f), f)
	}
	return h.Sum64()
}
