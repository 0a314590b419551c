package notify

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/grade"
	"github.com/trezcool/ratiba/core/schedule"
)

var today = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

func alertsByKind(alerts []Alert) map[ChangeKind]int {
	byKind := make(map[ChangeKind]int)
	for _, a := range alerts {
		byKind[a.Kind]++
	}
	return byKind
}

func TestChangeDetector(t *testing.T) {
	var d changeDetector

	cancel1 := schedule.Cancellation{ID: uuid.New(), OwnerID: "t1", DateFrom: "5.1.2026", Note: "staff day"}
	grade1 := grade.Grade{ID: uuid.New(), StudentID: "s1", SubjectID: "math", SubjectName: "Mathematics", Label: "quiz 1", Points: 7, MaxPoints: 10}

	// first pass primes only
	if alerts := d.detect(today, []schedule.Cancellation{cancel1}, []grade.Grade{grade1}); len(alerts) != 0 {
		t.Fatalf("priming pass raised %d alerts: %v", len(alerts), alerts)
	}

	// no change, no alerts
	if alerts := d.detect(today, []schedule.Cancellation{cancel1}, []grade.Grade{grade1}); len(alerts) != 0 {
		t.Fatalf("unchanged pass raised %d alerts: %v", len(alerts), alerts)
	}

	// one added, one edited
	cancel2 := schedule.Cancellation{ID: uuid.New(), OwnerID: "t1", DateFrom: "5.1.2026", TimeFrom: "12:00", TimeTo: "14:00"}
	grade1.Points = 9
	alerts := d.detect(today, []schedule.Cancellation{cancel1, cancel2}, []grade.Grade{grade1})
	byKind := alertsByKind(alerts)
	if byKind[ChangeAdded] != 1 || byKind[ChangeEdited] != 1 || len(alerts) != 2 {
		t.Fatalf("alerts = %v, want one added + one edited", alerts)
	}

	// both cancellations withdrawn
	alerts = d.detect(today, nil, []grade.Grade{grade1})
	byKind = alertsByKind(alerts)
	if byKind[ChangeRemoved] != 2 || len(alerts) != 2 {
		t.Fatalf("alerts = %v, want two removed", alerts)
	}
}

func TestChangeDetector_onlyTodaysCancellations(t *testing.T) {
	var d changeDetector
	d.detect(today, nil, nil) // prime

	// a cancellation next week is invisible until it covers today
	future := schedule.Cancellation{ID: uuid.New(), OwnerID: "t1", DateFrom: "12.1.2026"}
	if alerts := d.detect(today, []schedule.Cancellation{future}, nil); len(alerts) != 0 {
		t.Fatalf("future cancellation raised alerts: %v", alerts)
	}

	// ranges are inclusive on both ends
	covering := schedule.Cancellation{ID: uuid.New(), OwnerID: "t1", DateFrom: "4.1.2026", DateTo: "5.1.2026"}
	alerts := d.detect(today, []schedule.Cancellation{future, covering}, nil)
	if len(alerts) != 1 || alerts[0].Kind != ChangeAdded {
		t.Fatalf("alerts = %v, want one added", alerts)
	}

	// malformed records never alert
	bad := schedule.Cancellation{ID: uuid.New(), OwnerID: "t1", DateFrom: "lol"}
	if alerts := d.detect(today, []schedule.Cancellation{future, covering, bad}, nil); len(alerts) != 0 {
		t.Fatalf("malformed cancellation raised alerts: %v", alerts)
	}
}

func TestChangeDetector_editNotMaskedByFieldShuffle(t *testing.T) {
	var d changeDetector

	before := schedule.Cancellation{ID: uuid.New(), OwnerID: "t1", DateFrom: "5.1.2026", Note: "ab"}
	d.detect(today, []schedule.Cancellation{before}, nil)

	// shifting a character across a field boundary must still read as an edit
	after := before
	after.Note = "a"
	after.TimeTo = "" // unchanged
	after.OwnerID = "t1b"
	alerts := d.detect(today, []schedule.Cancellation{after}, nil)
	if len(alerts) != 1 || alerts[0].Kind != ChangeEdited {
		t.Fatalf("alerts = %v, want one edited", alerts)
	}
}

func TestHashFields(t *testing.T) {
	if hashFields("ab", "c") == hashFields("a", "bc") {
		t.Error("field boundaries must affect the hash")
	}
	if hashFields("a", "b") != hashFields("a", "b") {
		t.Error("hash must be deterministic")
	}
}
