package reservation

import (
	"time"

	"linkup/internal/domain/resource"
)

// Slot is one listed booking window.
type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// RoundDown snaps t to the previous :00 or :30.
func RoundDown(t time.Time) time.Time {
	base := t.Truncate(time.Minute).Add(-time.Duration(t.Minute()) * time.Minute)
	if t.Minute() >= 30 {
		return base.Add(30 * time.Minute)
	}
	return base
}

// RoundUp picks the start for an immediate booking: minute 0 stays on the
// hour, minutes 1 to 30 go to :30, later minutes go to the next hour.
// Seconds are dropped.
func RoundUp(t time.Time) time.Time {
	base := t.Truncate(time.Minute).Add(-time.Duration(t.Minute()) * time.Minute)
	switch m := t.Minute(); {
	case m == 0:
		return base
	case m <= 30:
		return base.Add(30 * time.Minute)
	default:
		return base.Add(time.Hour)
	}
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// CurrentOf returns the row covering now, or nil.
func CurrentOf(rows []Reservation, now time.Time) *Reservation {
	for i := range rows {
		if rows[i].ActiveAt(now) {
			return &rows[i]
		}
	}
	return nil
}

// Classify derives the status a caller sees. A terminal intrinsic status
// wins. Otherwise the row covering now decides: reserved for its holder,
// occupied for everyone else. Without a covering row an unheld "occupied"
// set by staff is kept and anything else reads as available.
func Classify(intrinsic resource.Status, rows []Reservation, caller int64, now time.Time) resource.Status {
	if intrinsic.Terminal() {
		return intrinsic
	}
	if cur := CurrentOf(rows, now); cur != nil {
		if cur.UserID == caller {
			return resource.StatusReserved
		}
		return resource.StatusOccupied
	}
	return intrinsic.Uncovered()
}

// ClassifyAll classifies a batch of resources against live rows grouped by
// resource key.
func ClassifyAll(items []resource.Resource, live map[resource.Key][]Reservation, caller int64, now time.Time) map[resource.Key]resource.Status {
	out := make(map[resource.Key]resource.Status, len(items))
	for _, it := range items {
		out[it.Key()] = Classify(it.CurrentStatus(), live[it.Key()], caller, now)
	}
	return out
}

// Slots lists the day's windows from max(DayStart, RoundDown(now)) while
// the slot still ends by DayEnd. A slot is available when no row overlaps it.
func (s Schedule) Slots(now time.Time, rows []Reservation) []Slot {
	start := on(now, s.DayStart)
	if rd := RoundDown(now); rd.After(start) {
		start = rd
	}
	end := on(now, s.DayEnd)

	var out []Slot
	for st := start; !st.Add(s.SlotLength).After(end); st = st.Add(s.SlotStep) {
		slot := Slot{Start: st, End: st.Add(s.SlotLength), Available: true}
		for _, r := range rows {
			if Overlaps(slot.Start, slot.End, r.Start, r.End) {
				slot.Available = false
				break
			}
		}
		out = append(out, slot)
	}
	return out
}

// CheckWindow validates a requested [start, end) against the schedule and
// now. It does not consult the ledger.
func (s Schedule) CheckWindow(start, end, now time.Time) error {
	start = start.In(now.Location())
	end = end.In(now.Location())

	if !sameDay(now, start) {
		return ErrNotToday
	}
	if (start.Minute() != 0 && start.Minute() != 30) || start.Second() != 0 || start.Nanosecond() != 0 {
		return ErrNotHalfHour
	}
	if start.Before(on(start, s.OpenFrom)) || end.After(on(start, s.OpenUntil)) {
		return ErrOutsideHours
	}
	if !end.After(now) {
		return ErrSlotElapsed
	}
	return nil
}
