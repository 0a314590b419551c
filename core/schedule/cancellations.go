package schedule

import "time"

// cancelSpan is a Cancellation with its date/time fields parsed.
type cancelSpan struct {
	dateFrom time.Time
	dateTo   time.Time
	timeFrom TimeOfDay // DayStart when unset
	timeTo   TimeOfDay // DayEnd when unset
	wholeDay bool
}

// CancellationIndex answers "is this slot cancelled on date D?" for a set of
// cancellation records. Malformed records are dropped at construction.
type CancellationIndex struct {
	byOwner map[string][]cancelSpan
}

func NewCancellationIndex(recs []Cancellation) *CancellationIndex {
	cx := &CancellationIndex{byOwner: make(map[string][]cancelSpan, len(recs))}
	for _, rec := range recs {
		span, ok := parseCancellation(rec)
		if !ok {
			continue // malformed record, skip
		}
		cx.byOwner[rec.OwnerID] = append(cx.byOwner[rec.OwnerID], span)
	}
	return cx
}

func parseCancellation(rec Cancellation) (cancelSpan, bool) {
	dateFrom, err := ParseDate(rec.DateFrom)
	if err != nil {
		return cancelSpan{}, false
	}
	dateTo := dateFrom
	if rec.DateTo != "" {
		if dateTo, err = ParseDate(rec.DateTo); err != nil {
			return cancelSpan{}, false
		}
	}
	if dateTo.Before(dateFrom) {
		return cancelSpan{}, false
	}

	span := cancelSpan{
		dateFrom: dateFrom,
		dateTo:   dateTo,
		timeFrom: DayStart,
		timeTo:   DayEnd,
		wholeDay: rec.TimeFrom == "" && rec.TimeTo == "",
	}
	if rec.TimeFrom != "" {
		if span.timeFrom, err = ParseTimeOfDay(rec.TimeFrom); err != nil {
			return cancelSpan{}, false
		}
	}
	if rec.TimeTo != "" {
		if span.timeTo, err = ParseTimeOfDay(rec.TimeTo); err != nil {
			return cancelSpan{}, false
		}
	}
	return span, true
}

// effectiveWindow returns the cancelled time window on the given date.
// The window starts at timeFrom only on the first day and ends at timeTo only
// on the last day; middle days are fully covered.
func (s cancelSpan) effectiveWindow(date time.Time) (from, to TimeOfDay) {
	from, to = DayStart, DayEnd
	if SameDate(date, s.dateFrom) {
		from = s.timeFrom
	}
	if SameDate(date, s.dateTo) {
		to = s.timeTo
	}
	return from, to
}

func (s cancelSpan) covers(date time.Time) bool {
	return !date.Before(s.dateFrom) && !date.After(s.dateTo)
}

// IsCancelled reports whether the owner's slot [start,end) on date overlaps
// any cancellation. Interval overlap is half-open: a slot starting exactly at
// the end of a cancellation window is not cancelled.
func (cx *CancellationIndex) IsCancelled(ownerID string, date time.Time, start, end TimeOfDay) bool {
	for _, span := range cx.byOwner[ownerID] {
		if !span.covers(date) {
			continue
		}
		if span.wholeDay {
			return true
		}
		from, to := span.effectiveWindow(date)
		if start < to && end > from {
			return true
		}
	}
	return false
}

// IsDateFullyOff reports whether any cancellation covers the owner's entire
// date, ignoring slot times. Used to short-circuit "anything off today?" checks.
func (cx *CancellationIndex) IsDateFullyOff(ownerID string, date time.Time) bool {
	for _, span := range cx.byOwner[ownerID] {
		if !span.covers(date) {
			continue
		}
		from, to := span.effectiveWindow(date)
		if span.wholeDay || (from == DayStart && to == DayEnd) {
			return true
		}
	}
	return false
}
