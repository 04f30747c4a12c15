package services

import "time"

// GraceBusinessDays is the number of business days after creation during
// which a teacher may freely edit or delete an evaluation.
const GraceBusinessDays = 3

// BusinessDaysElapsed counts the Monday–Friday days between start and now,
// both truncated to day boundaries and both inclusive, minus one so the
// creation day itself is not an elapsed day. Returns 0 when now falls before
// start. Weekends never erode the edit window.
func BusinessDaysElapsed(start, now time.Time) int {
	s := truncateToDay(start)
	n := truncateToDay(now)
	if n.Before(s) {
		return 0
	}

	count := 0
	for d := s; !d.After(n); d = d.AddDate(0, 0, 1) {
		wd := d.Weekday()
		if wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}

	if count == 0 {
		return 0
	}
	return count - 1
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
