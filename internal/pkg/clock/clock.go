package clock

import (
	"sync"
	"time"
)

// Clock is the only source of "now" for reservation logic.
type Clock interface {
	Now() time.Time
	Location() *time.Location
}

type Real struct {
	loc *time.Location
}

func New(loc *time.Location) Real {
	if loc == nil {
		loc = time.Local
	}
	return Real{loc: loc}
}

func (c Real) Now() time.Time { return time.Now().In(c.loc) }

func (c Real) Location() *time.Location { return c.loc }

// Fixed is a manually driven clock for tests and one-shot commands.
type Fixed struct {
	mu sync.RWMutex
	t  time.Time
}

func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.t
}

func (f *Fixed) Location() *time.Location {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.t.Location()
}

func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.t = t
	f.mu.Unlock()
}

func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
