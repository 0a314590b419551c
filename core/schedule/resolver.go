package schedule

import (
	"sort"
	"time"
)

// Resolve turns the snapshot into the ordered list of slot occurrences on the
// given date, classified relative to `now`. Pure: no I/O, no ambient state.
//
// Live classification (Current/Next) only applies when `now` falls on `date`;
// for any other date every occurrence is Future. Cancelled and wrong-parity
// occurrences are reported as Past regardless of time: they are resolved, not
// happening (they stay in the output for struck-through display).
func Resolve(snap Snapshot, date time.Time, now time.Time) []Slot {
	cx := NewCancellationIndex(snap.Cancellations)
	parity := WeekParityOf(date)

	slots := make([]Slot, 0, len(snap.Rules))
	for _, rule := range snap.Rules {
		slot, ok := occurrence(rule, date, parity)
		if !ok {
			continue
		}
		slot.Cancelled = cx.IsCancelled(rule.OwnerID, date, slot.Start, slot.End)
		slots = append(slots, slot)
	}

	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Start < slots[j].Start })

	classify(slots, date, now)
	return slots
}

// occurrence decides whether the rule occurs on date, parsing its time
// fields. Malformed rules are skipped. A recurring rule on the right weekday
// but the wrong parity week still occurs, flagged WrongParity.
func occurrence(rule Rule, date time.Time, parity Parity) (Slot, bool) {
	start, err := ParseTimeOfDay(rule.StartTime)
	if err != nil {
		return Slot{}, false
	}
	end, err := ParseTimeOfDay(rule.EndTime)
	if err != nil || end <= start {
		return Slot{}, false
	}

	slot := Slot{Rule: rule, Date: date, Start: start, End: end}

	if dates := rule.specificDateList(); len(dates) > 0 {
		for _, s := range dates {
			d, err := ParseDate(s)
			if err != nil {
				continue // malformed entry, skip it alone
			}
			if SameDate(d, date) {
				return slot, true
			}
		}
		return Slot{}, false
	}

	if rule.SpecificDate != "" {
		d, err := ParseDate(rule.SpecificDate)
		if err != nil {
			return Slot{}, false
		}
		return slot, SameDate(d, date)
	}

	if rule.DayOfWeek != date.Weekday() {
		return Slot{}, false
	}
	if rule.WeekParity != ParityEvery && rule.WeekParity != "" && rule.WeekParity != parity {
		slot.WrongParity = true
	}
	return slot, true
}

func classify(slots []Slot, date time.Time, now time.Time) {
	if !SameDate(date, now) {
		for i := range slots {
			if slots[i].Eligible() {
				slots[i].State = StateFuture
			} else {
				slots[i].State = StatePast
			}
		}
		return
	}

	nowTOD := TimeOfDayAt(now)
	nextIdx := -1
	for i := range slots {
		s := &slots[i]
		switch {
		case !s.Eligible():
			s.State = StatePast
		case nowTOD >= s.End:
			s.State = StatePast
		case s.Start <= nowTOD:
			s.State = StateCurrent
		default:
			s.State = StateFuture
			// slots are sorted; the first future eligible one is Next
			if nextIdx < 0 {
				nextIdx = i
			}
		}
	}
	if nextIdx >= 0 {
		slots[nextIdx].State = StateNext
	}
}
