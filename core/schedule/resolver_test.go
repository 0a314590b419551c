package schedule

import (
	"testing"
	"time"
)

// Mon Jan 5 2026 falls in an even ISO week; Mon Jan 12 in an odd one.
var (
	evenMonday = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	oddMonday  = time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
)

func weeklyRule(owner, subject, start, end string, day time.Weekday) Rule {
	return Rule{
		OwnerID:   owner,
		SubjectID: subject,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
	}
}

func statesOf(slots []Slot) []SlotState {
	states := make([]SlotState, len(slots))
	for i, s := range slots {
		states[i] = s.State
	}
	return states
}

func subjectsOf(slots []Slot) []string {
	subjects := make([]string, len(slots))
	for i, s := range slots {
		subjects[i] = s.Rule.SubjectID
	}
	return subjects
}

func TestResolve_ordersAndClassifies(t *testing.T) {
	snap := Snapshot{
		Rules: []Rule{
			// deliberately out of order
			weeklyRule("t1", "math", "10:00", "10:45", time.Monday),
			weeklyRule("t1", "bio", "08:00", "08:45", time.Monday),
			weeklyRule("t1", "chem", "09:00", "09:45", time.Monday),
			weeklyRule("t1", "phys", "11:00", "11:45", time.Monday),
			weeklyRule("t1", "art", "08:00", "08:45", time.Tuesday), // other day
		},
	}

	now := time.Date(2026, 1, 5, 9, 15, 0, 0, time.UTC)
	slots := Resolve(snap, evenMonday, now)

	wantSubjects := []string{"bio", "chem", "math", "phys"}
	gotSubjects := subjectsOf(slots)
	if len(gotSubjects) != len(wantSubjects) {
		t.Fatalf("Resolve() returned %d slots, want %d", len(gotSubjects), len(wantSubjects))
	}
	for i := range wantSubjects {
		if gotSubjects[i] != wantSubjects[i] {
			t.Fatalf("Resolve() order = %v, want %v", gotSubjects, wantSubjects)
		}
	}

	// 09:15: bio is over, chem is running, math is next, phys is plain future
	wantStates := []SlotState{StatePast, StateCurrent, StateNext, StateFuture}
	for i, want := range wantStates {
		if slots[i].State != want {
			t.Errorf("slot %s state = %v, want %v", slots[i].Rule.SubjectID, slots[i].State, want)
		}
	}
}

func TestResolve_exactlyOneNext(t *testing.T) {
	snap := Snapshot{
		Rules: []Rule{
			weeklyRule("t1", "a", "10:00", "10:45", time.Monday),
			weeklyRule("t1", "b", "11:00", "11:45", time.Monday),
			weeklyRule("t1", "c", "12:00", "12:45", time.Monday),
		},
	}

	now := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	slots := Resolve(snap, evenMonday, now)

	var nexts int
	for _, s := range slots {
		if s.State == StateNext {
			nexts++
		}
	}
	if nexts != 1 {
		t.Fatalf("got %d Next slots, want exactly 1: %v", nexts, statesOf(slots))
	}
	if slots[0].State != StateNext {
		t.Errorf("earliest future slot state = %v, want %v", slots[0].State, StateNext)
	}
}

func TestResolve_boundaryInstants(t *testing.T) {
	snap := Snapshot{
		Rules: []Rule{weeklyRule("t1", "math", "08:00", "08:45", time.Monday)},
	}

	tests := []struct {
		name string
		now  time.Time
		want SlotState
	}{
		{name: "exactly at start", now: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC), want: StateCurrent},
		{name: "exactly at end", now: time.Date(2026, 1, 5, 8, 45, 0, 0, time.UTC), want: StatePast},
		{name: "just before start", now: time.Date(2026, 1, 5, 7, 59, 0, 0, time.UTC), want: StateNext},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := Resolve(snap, evenMonday, tt.now)
			if len(slots) != 1 {
				t.Fatalf("Resolve() returned %d slots, want 1", len(slots))
			}
			if slots[0].State != tt.want {
				t.Errorf("state = %v, want %v", slots[0].State, tt.want)
			}
		})
	}
}

func TestResolve_otherDateIsAllFuture(t *testing.T) {
	snap := Snapshot{
		Rules: []Rule{
			weeklyRule("t1", "math", "08:00", "08:45", time.Monday),
			weeklyRule("t1", "bio", "10:00", "10:45", time.Monday),
		},
	}

	// resolving next Monday while it is still this Monday
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	slots := Resolve(snap, time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC), now)

	for _, s := range slots {
		if s.State != StateFuture {
			t.Errorf("slot %s state = %v, want %v", s.Rule.SubjectID, s.State, StateFuture)
		}
	}
}

func TestResolve_otherDateIneligibleIsPast(t *testing.T) {
	// only live occurrences lose the live classification on other dates;
	// cancelled and wrong-parity ones stay struck through as past
	odd := weeklyRule("t1", "odd-chem", "09:00", "09:45", time.Monday)
	odd.WeekParity = ParityOdd
	snap := Snapshot{
		Rules: []Rule{
			weeklyRule("t1", "math", "08:00", "08:45", time.Monday),
			odd,
		},
		Cancellations: []Cancellation{
			{OwnerID: "t1", DateFrom: "19.1.2026"},
		},
	}

	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	// 19.1.2026 is an even Monday, fully cancelled for t1
	slots := Resolve(snap, time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC), now)

	if len(slots) != 2 {
		t.Fatalf("slots = %d, want 2", len(slots))
	}
	if !slots[0].Cancelled || slots[0].State != StatePast {
		t.Errorf("cancelled slot = %+v, want past", slots[0])
	}
	if !slots[1].WrongParity || slots[1].State != StatePast {
		t.Errorf("wrong-parity slot = %+v, want past", slots[1])
	}
}

func TestResolve_parity(t *testing.T) {
	even := weeklyRule("t1", "even-math", "08:00", "08:45", time.Monday)
	even.WeekParity = ParityEven
	odd := weeklyRule("t1", "odd-math", "09:00", "09:45", time.Monday)
	odd.WeekParity = ParityOdd
	every := weeklyRule("t1", "any-bio", "10:00", "10:45", time.Monday)
	every.WeekParity = ParityEvery

	snap := Snapshot{Rules: []Rule{even, odd, every}}

	now := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	slots := Resolve(snap, evenMonday, now)
	if len(slots) != 3 {
		t.Fatalf("Resolve() returned %d slots, want 3", len(slots))
	}

	// wrong-parity occurrences stay visible but are resolved as Past
	for _, s := range slots {
		switch s.Rule.SubjectID {
		case "even-math":
			if s.WrongParity || s.State != StateNext {
				t.Errorf("even-math: wrongParity=%v state=%v", s.WrongParity, s.State)
			}
		case "odd-math":
			if !s.WrongParity || s.State != StatePast {
				t.Errorf("odd-math: wrongParity=%v state=%v, want wrong parity + past", s.WrongParity, s.State)
			}
		case "any-bio":
			if s.WrongParity || s.State != StateFuture {
				t.Errorf("any-bio: wrongParity=%v state=%v", s.WrongParity, s.State)
			}
		}
	}

	// flipped on an odd week
	slots = Resolve(snap, oddMonday, now)
	for _, s := range slots {
		switch s.Rule.SubjectID {
		case "even-math":
			if !s.WrongParity {
				t.Error("even-math should be wrong parity on an odd week")
			}
		case "odd-math":
			if s.WrongParity {
				t.Error("odd-math should occur on an odd week")
			}
		}
	}
}

func TestResolve_specificDates(t *testing.T) {
	oneOff := weeklyRule("t1", "exam", "08:00", "09:30", time.Friday)
	oneOff.SpecificDate = "5.1.2026"
	multi := weeklyRule("t1", "review", "10:00", "10:45", time.Friday)
	multi.SpecificDates = "5.1.2026, 12.1.2026, lol"
	badDate := weeklyRule("t1", "ghost", "11:00", "11:45", time.Friday)
	badDate.SpecificDate = "lol"

	snap := Snapshot{Rules: []Rule{oneOff, multi, badDate}}
	now := time.Date(2026, 1, 4, 7, 0, 0, 0, time.UTC)

	slots := Resolve(snap, evenMonday, now)
	got := subjectsOf(slots)
	if len(got) != 2 || got[0] != "exam" || got[1] != "review" {
		t.Errorf("Resolve() subjects = %v, want [exam review]", got)
	}

	// the weekday of a one-off rule is irrelevant, only its dates count
	slots = Resolve(snap, oddMonday, now)
	got = subjectsOf(slots)
	if len(got) != 1 || got[0] != "review" {
		t.Errorf("Resolve() subjects = %v, want [review]", got)
	}
}

func TestResolve_cancelledIsPast(t *testing.T) {
	snap := Snapshot{
		Rules: []Rule{weeklyRule("t1", "math", "10:00", "10:45", time.Monday)},
		Cancellations: []Cancellation{
			{OwnerID: "t1", DateFrom: "5.1.2026", TimeFrom: "09:00", TimeTo: "12:00"},
		},
	}

	// well before start: a live slot would be Next, a cancelled one is Past
	now := time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC)
	slots := Resolve(snap, evenMonday, now)
	if len(slots) != 1 {
		t.Fatalf("Resolve() returned %d slots, want 1", len(slots))
	}
	if !slots[0].Cancelled || slots[0].State != StatePast {
		t.Errorf("cancelled=%v state=%v, want cancelled + past", slots[0].Cancelled, slots[0].State)
	}
}

func TestResolve_skipsMalformedRules(t *testing.T) {
	snap := Snapshot{
		Rules: []Rule{
			weeklyRule("t1", "bad-start", "lol", "08:45", time.Monday),
			weeklyRule("t1", "bad-end", "08:00", "8:5", time.Monday),
			weeklyRule("t1", "inverted", "10:00", "09:00", time.Monday),
			weeklyRule("t1", "empty", "09:00", "09:00", time.Monday),
			weeklyRule("t1", "ok", "08:00", "08:45", time.Monday),
		},
	}

	slots := Resolve(snap, evenMonday, time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC))
	got := subjectsOf(slots)
	if len(got) != 1 || got[0] != "ok" {
		t.Errorf("Resolve() subjects = %v, want [ok]", got)
	}
}
