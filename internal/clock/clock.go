// Package clock provides an injectable time source.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

// System is the real clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now().In(time.UTC)
}

// Fixed is a clock for tests that always returns the same instant.
type Fixed struct {
	FixedNow time.Time
}

func (f *Fixed) Now() time.Time {
	return f.FixedNow
}

func (f *Fixed) SetNow(now time.Time) {
	f.FixedNow = now
}
