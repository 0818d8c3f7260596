package common

import "time"

// TimeFormatISO8601 is ISO 8601 with nanoseconds.
const TimeFormatISO8601 string = "2006-01-02T15:04:05.000000000Z07:00"

func FormatISO8601(t time.Time) string {
	return t.Format(TimeFormatISO8601)
}
