package schedule

import "fmt"

// Conflict describes an existing rule a candidate rule overlaps with.
type Conflict struct {
	Rule Rule
}

func (c Conflict) Description() string {
	return fmt.Sprintf(
		"overlaps %s on %s %s–%s",
		c.Rule.SubjectName, c.Rule.DayOfWeek, c.Rule.StartTime, c.Rule.EndTime,
	)
}

// FindConflict scans existing rules for a time overlap with the candidate on
// the same weekday, honoring week parity. Special (drop-in) sessions never
// conflict, on either side. The result is advisory: callers warn, they do not
// block the save. Returns nil when there is no conflict.
func FindConflict(candidate Rule, existing []Rule) *Conflict {
	if candidate.Special {
		return nil
	}
	start, err := ParseTimeOfDay(candidate.StartTime)
	if err != nil {
		return nil
	}
	end, err := ParseTimeOfDay(candidate.EndTime)
	if err != nil {
		return nil
	}

	for _, rule := range existing {
		if rule.Special || rule.ID == candidate.ID {
			continue
		}
		if rule.SpecificDate != "" || rule.SpecificDates != "" {
			continue // one-off entries are checked per date, not per weekday
		}
		if rule.DayOfWeek != candidate.DayOfWeek {
			continue
		}
		if !paritiesCompatible(candidate.WeekParity, rule.WeekParity) {
			continue
		}
		rStart, err := ParseTimeOfDay(rule.StartTime)
		if err != nil {
			continue
		}
		rEnd, err := ParseTimeOfDay(rule.EndTime)
		if err != nil {
			continue
		}
		// half-open overlap
		if start < rEnd && end > rStart {
			return &Conflict{Rule: rule}
		}
	}
	return nil
}

// paritiesCompatible reports whether two rules can ever land on the same week.
func paritiesCompatible(a, b Parity) bool {
	if a == ParityEvery || a == "" || b == ParityEvery || b == "" {
		return true
	}
	return a == b
}
