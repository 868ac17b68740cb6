package reservation

import (
	"fmt"
	"time"
)

// Schedule holds the daily windows as offsets from local midnight.
type Schedule struct {
	DayStart   time.Duration // first listed slot
	DayEnd     time.Duration // last listed slot ends at or before this
	OpenFrom   time.Duration // earliest reservable start
	OpenUntil  time.Duration // latest reservable end
	SlotLength time.Duration
	SlotStep   time.Duration
}

func DefaultSchedule() Schedule {
	return Schedule{
		DayStart:   8 * time.Hour,
		DayEnd:     20 * time.Hour,
		OpenFrom:   0,
		OpenUntil:  23*time.Hour + 59*time.Minute,
		SlotLength: time.Hour,
		SlotStep:   30 * time.Minute,
	}
}

// ParseSchedule builds a Schedule from "HH:MM" clock strings.
func ParseSchedule(dayStart, dayEnd, openFrom, openUntil string, length, step time.Duration) (Schedule, error) {
	var s Schedule
	var err error
	if s.DayStart, err = clockOffset(dayStart); err != nil {
		return s, err
	}
	if s.DayEnd, err = clockOffset(dayEnd); err != nil {
		return s, err
	}
	if s.OpenFrom, err = clockOffset(openFrom); err != nil {
		return s, err
	}
	if s.OpenUntil, err = clockOffset(openUntil); err != nil {
		return s, err
	}
	if s.DayEnd <= s.DayStart || s.OpenUntil <= s.OpenFrom {
		return s, fmt.Errorf("schedule: window end must be after start")
	}
	if length <= 0 || step <= 0 {
		return s, fmt.Errorf("schedule: slot length and step must be positive")
	}
	s.SlotLength, s.SlotStep = length, step
	return s, nil
}

func clockOffset(hhmm string) (time.Duration, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return 0, fmt.Errorf("schedule: invalid clock time %q", hhmm)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// midnight is 00:00 of t's calendar day in t's location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// on returns the wall-clock offset on the same local day as t.
func on(t time.Time, offset time.Duration) time.Time {
	return midnight(t).Add(offset)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
