package notify

import (
	"testing"
	"time"

	"github.com/trezcool/ratiba/core/schedule"
)

func slot(subject, room, start, end string, state schedule.SlotState) schedule.Slot {
	s, _ := schedule.ParseTimeOfDay(start)
	e, _ := schedule.ParseTimeOfDay(end)
	return schedule.Slot{
		Rule:  schedule.Rule{SubjectName: subject, Room: room},
		Start: s,
		End:   e,
		State: state,
	}
}

func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 30, 0, 0, time.UTC)

	t.Run("current and next", func(t *testing.T) {
		st := StatusOf([]schedule.Slot{
			slot("History", "", "07:00", "07:45", schedule.StatePast),
			slot("Mathematics", "B12", "08:00", "09:00", schedule.StateCurrent),
			slot("Biology", "", "10:00", "10:45", schedule.StateNext),
			slot("Art", "", "11:00", "11:45", schedule.StateFuture),
		}, now)

		if want := "Now: Mathematics (08:00–09:00, B12)"; st.CurrentText != want {
			t.Errorf("CurrentText = %q, want %q", st.CurrentText, want)
		}
		if want := "Next: Biology (10:00–10:45)"; st.NextText != want {
			t.Errorf("NextText = %q, want %q", st.NextText, want)
		}
		// half an hour into a one hour slot
		if st.Progress != 50 {
			t.Errorf("Progress = %d, want 50", st.Progress)
		}
	})

	t.Run("free period", func(t *testing.T) {
		st := StatusOf([]schedule.Slot{
			slot("History", "", "07:00", "07:45", schedule.StatePast),
			slot("Biology", "", "10:00", "10:45", schedule.StateNext),
		}, now)

		if st.CurrentText != "" || st.Progress != 0 {
			t.Errorf("free period: CurrentText=%q Progress=%d", st.CurrentText, st.Progress)
		}
		if st.NextText == "" {
			t.Error("free period: NextText is empty")
		}
	})

	t.Run("empty day", func(t *testing.T) {
		st := StatusOf(nil, now)
		if st.CurrentText != "" || st.NextText != "" || st.Progress != 0 {
			t.Errorf("empty day status = %+v", st)
		}
	})
}

func TestProgressOf(t *testing.T) {
	s := slot("Mathematics", "", "08:00", "09:00", schedule.StateCurrent)

	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "at start", now: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC), want: 0},
		{name: "quarter in", now: time.Date(2026, 1, 5, 8, 15, 0, 0, time.UTC), want: 25},
		{name: "at end", now: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC), want: 100},
		{name: "clamped below", now: time.Date(2026, 1, 5, 7, 0, 0, 0, time.UTC), want: 0},
		{name: "clamped above", now: time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC), want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := progressOf(s, tt.now); got != tt.want {
				t.Errorf("progressOf() = %d, want %d", got, tt.want)
			}
		})
	}
}
