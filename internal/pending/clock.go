package pending

import "time"

type Timer interface {
	// Stop reports whether the call prevented the function from running.
	Stop() bool
}

// Clock schedules deferred commits. AfterFunc must run f on its own
// goroutine, never inline.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
