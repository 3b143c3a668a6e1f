package clock

import "time"

type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

func System() Clock {
	return ClockFunc(time.Now)
}

// Fixed always returns t. Used by tests and by cmd/tick when a date is forced.
func Fixed(t time.Time) Clock {
	return ClockFunc(func() time.Time {
		return t
	})
}

// Date truncates t to midnight in its own location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
