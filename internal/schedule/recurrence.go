package schedule

import "time"

// Frequency is a recurrence rule for batch-created reviews.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

// ExpandRecurrence turns a recurrence rule into the concrete dates between
// start and end, inclusive. Generated dates keep start's time of day.
//
// daysOfWeek uses time.Weekday numbering (Sunday = 0) and applies to weekly
// and biweekly rules. Biweekly counts every other week from the week
// containing start. Monthly repeats start's day of month, clamped to the last
// day of shorter months.
func ExpandRecurrence(start, end time.Time, frequency Frequency, daysOfWeek []time.Weekday) []time.Time {
	if frequency == FrequencyMonthly {
		return expandMonthly(start, end)
	}

	wanted := make(map[time.Weekday]bool, len(daysOfWeek))
	for _, day := range daysOfWeek {
		wanted[day] = true
	}

	var dates []time.Time
	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		switch frequency {
		case FrequencyDaily:
			dates = append(dates, date)
		case FrequencyWeekly:
			if wanted[date.Weekday()] {
				dates = append(dates, date)
			}
		case FrequencyBiweekly:
			if wanted[date.Weekday()] && weeksBetween(start, date)%2 == 0 {
				dates = append(dates, date)
			}
		}
	}
	return dates
}

// weeksBetween counts whole calendar weeks (Sunday-anchored) between the
// weeks containing a and b. a must not be after b.
func weeksBetween(a, b time.Time) int {
	return int(weekStart(b).Sub(weekStart(a)).Hours() / 24 / 7)
}

func weekStart(t time.Time) time.Time {
	dayStart, _ := DayBounds(t)
	return dayStart.AddDate(0, 0, -int(t.Weekday()))
}

func expandMonthly(start, end time.Time) []time.Time {
	var dates []time.Time
	for i := 0; ; i++ {
		date := addMonthsClamped(start, i)
		if date.After(end) {
			return dates
		}
		dates = append(dates, date)
	}
}

// addMonthsClamped advances by whole months, clamping day-of-month instead of
// letting time.AddDate roll over (Jan 31 + 1 month is Feb 28, not Mar 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	first := time.Date(year, month+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); day > last {
		day = last
	}
	return first.AddDate(0, 0, day-1)
}
