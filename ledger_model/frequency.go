package ledger_model

import "time"

type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Biweekly  Frequency = "biweekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
	Yearly    Frequency = "yearly"
)

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Biweekly, Monthly, Quarterly, Yearly:
		return true
	default:
		return false
	}
}

// Next returns the occurrence after current. Month based frequencies keep
// the day of anchor and clamp to the last day of shorter months, so a
// schedule started on Jan 31 runs Feb 28, Mar 31, Apr 30.
func (f Frequency) Next(anchor, current time.Time) time.Time {
	switch f {
	case Daily:
		return current.AddDate(0, 0, 1)
	case Weekly:
		return current.AddDate(0, 0, 7)
	case Biweekly:
		return current.AddDate(0, 0, 14)
	case Monthly:
		return addMonthsClamped(current, 1, anchor.Day())
	case Quarterly:
		return addMonthsClamped(current, 3, anchor.Day())
	case Yearly:
		return addMonthsClamped(current, 12, anchor.Day())
	default:
		return current
	}
}

func addMonthsClamped(t time.Time, months int, day int) time.Time {
	y, m, _ := t.Date()
	first := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())

	last := first.AddDate(0, 1, -1).Day()
	if day > last {
		day = last
	}

	return first.AddDate(0, 0, day-1)
}

// PastEnd reports whether next lies after an optional end date.
func PastEnd(next time.Time, end *time.Time) bool {
	return end != nil && next.After(*end)
}

// Occurrences lists up to limit occurrences from next that are not after
// until and not past end.
func Occurrences(f Frequency, anchor, next, until time.Time, end *time.Time, limit int) []time.Time {
	result := []time.Time{}
	for len(result) < limit && !next.After(until) && !PastEnd(next, end) {
		result = append(result, next)
		next = f.Next(anchor, next)
	}
	return result
}
