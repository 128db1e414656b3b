package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
}

func TestExpandRecurrence(t *testing.T) {
	// June 2025 starts on a Sunday; June 2 is a Monday.
	tests := []struct {
		name       string
		start      time.Time
		end        time.Time
		frequency  Frequency
		daysOfWeek []time.Weekday
		want       []time.Time
	}{
		{
			name:      "daily covers every date in range",
			start:     date(2025, time.June, 2),
			end:       date(2025, time.June, 6),
			frequency: FrequencyDaily,
			want: []time.Time{
				date(2025, time.June, 2),
				date(2025, time.June, 3),
				date(2025, time.June, 4),
				date(2025, time.June, 5),
				date(2025, time.June, 6),
			},
		},
		{
			name:       "weekly mon wed fri over two weeks",
			start:      date(2025, time.June, 2),
			end:        date(2025, time.June, 15),
			frequency:  FrequencyWeekly,
			daysOfWeek: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			want: []time.Time{
				date(2025, time.June, 2),
				date(2025, time.June, 4),
				date(2025, time.June, 6),
				date(2025, time.June, 9),
				date(2025, time.June, 11),
				date(2025, time.June, 13),
			},
		},
		{
			name:       "biweekly skips every other week from the start week",
			start:      date(2025, time.June, 2),
			end:        date(2025, time.June, 29),
			frequency:  FrequencyBiweekly,
			daysOfWeek: []time.Weekday{time.Monday, time.Wednesday, time.Friday},
			want: []time.Time{
				date(2025, time.June, 2),
				date(2025, time.June, 4),
				date(2025, time.June, 6),
				date(2025, time.June, 16),
				date(2025, time.June, 18),
				date(2025, time.June, 20),
			},
		},
		{
			name:       "biweekly anchored to the week containing a midweek start",
			start:      date(2025, time.June, 4),
			end:        date(2025, time.June, 20),
			frequency:  FrequencyBiweekly,
			daysOfWeek: []time.Weekday{time.Wednesday, time.Friday},
			want: []time.Time{
				date(2025, time.June, 4),
				date(2025, time.June, 6),
				date(2025, time.June, 18),
				date(2025, time.June, 20),
			},
		},
		{
			name:      "monthly clamps to the last day of shorter months",
			start:     date(2025, time.January, 31),
			end:       date(2025, time.April, 30),
			frequency: FrequencyMonthly,
			want: []time.Time{
				date(2025, time.January, 31),
				date(2025, time.February, 28),
				date(2025, time.March, 31),
				date(2025, time.April, 30),
			},
		},
		{
			name:      "monthly keeps the day of month when it fits",
			start:     date(2025, time.January, 15),
			end:       date(2025, time.March, 15),
			frequency: FrequencyMonthly,
			want: []time.Time{
				date(2025, time.January, 15),
				date(2025, time.February, 15),
				date(2025, time.March, 15),
			},
		},
		{
			name:       "weekly with no matching day in range",
			start:      date(2025, time.June, 3),
			end:        date(2025, time.June, 5),
			frequency:  FrequencyWeekly,
			daysOfWeek: []time.Weekday{time.Saturday},
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandRecurrence(tt.start, tt.end, tt.frequency, tt.daysOfWeek)
			assert.Equal(t, tt.want, got)
		})
	}
}
