package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestFindConflict(t *testing.T) {
	monMath := weeklyRule("t1", "math", "08:00", "08:45", time.Monday)
	monMath.ID = uuid.New()
	monMath.SubjectName = "Mathematics"

	oddBio := weeklyRule("t1", "bio", "10:00", "10:45", time.Monday)
	oddBio.ID = uuid.New()
	oddBio.WeekParity = ParityOdd

	dropIn := weeklyRule("t1", "club", "12:00", "13:00", time.Monday)
	dropIn.ID = uuid.New()
	dropIn.Special = true

	oneOff := weeklyRule("t1", "exam", "14:00", "15:30", time.Monday)
	oneOff.ID = uuid.New()
	oneOff.SpecificDate = "5.1.2026"

	existing := []Rule{monMath, oddBio, dropIn, oneOff}

	mk := func(start, end string, day time.Weekday, parity Parity, special bool) Rule {
		r := weeklyRule("t1", "new", start, end, day)
		r.WeekParity = parity
		r.Special = special
		return r
	}

	tests := []struct {
		name      string
		candidate Rule
		wantWith  string // SubjectID of the conflicting rule, "" for none
	}{
		{name: "clean slot", candidate: mk("09:00", "09:45", time.Monday, "", false)},
		{name: "full overlap", candidate: mk("08:00", "08:45", time.Monday, "", false), wantWith: "math"},
		{name: "partial overlap", candidate: mk("08:30", "09:15", time.Monday, "", false), wantWith: "math"},
		{name: "back to back ok", candidate: mk("08:45", "09:30", time.Monday, "", false)},
		{name: "ends at start ok", candidate: mk("07:00", "08:00", time.Monday, "", false)},
		{name: "other weekday", candidate: mk("08:00", "08:45", time.Tuesday, "", false)},
		{name: "opposite parity never meets", candidate: mk("10:00", "10:45", time.Monday, ParityEven, false)},
		{name: "same parity meets", candidate: mk("10:00", "10:45", time.Monday, ParityOdd, false), wantWith: "bio"},
		{name: "every week meets odd", candidate: mk("10:00", "10:45", time.Monday, ParityEvery, false), wantWith: "bio"},
		{name: "special candidate never conflicts", candidate: mk("08:00", "08:45", time.Monday, "", true)},
		{name: "special existing never conflicts", candidate: mk("12:00", "13:00", time.Monday, "", false)},
		{name: "one-off existing skipped", candidate: mk("14:00", "15:30", time.Monday, "", false)},
		{name: "malformed candidate times", candidate: mk("lol", "08:45", time.Monday, "", false)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindConflict(tt.candidate, existing)
			if tt.wantWith == "" {
				if got != nil {
					t.Errorf("FindConflict() = conflict with %s, want none", got.Rule.SubjectID)
				}
				return
			}
			if got == nil {
				t.Fatalf("FindConflict() = nil, want conflict with %s", tt.wantWith)
			}
			if got.Rule.SubjectID != tt.wantWith {
				t.Errorf("FindConflict() conflicts with %s, want %s", got.Rule.SubjectID, tt.wantWith)
			}
		})
	}
}

func TestFindConflict_ignoresSelfOnUpdate(t *testing.T) {
	rule := weeklyRule("t1", "math", "08:00", "08:45", time.Monday)
	rule.ID = uuid.New()

	if got := FindConflict(rule, []Rule{rule}); got != nil {
		t.Errorf("FindConflict() = conflict with itself, want none")
	}
}

func TestConflict_Description(t *testing.T) {
	rule := weeklyRule("t1", "math", "08:00", "08:45", time.Monday)
	rule.SubjectName = "Mathematics"

	want := "overlaps Mathematics on Monday 08:00–08:45"
	if got := (Conflict{Rule: rule}).Description(); got != want {
		t.Errorf("Description() = %q, want %q", got, want)
	}
}
