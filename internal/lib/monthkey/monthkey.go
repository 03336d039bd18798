// Package monthkey derives the calendar-month storage key used by the
// export usage counter. Each month uses a distinct key, so a new month
// starts a fresh counter without any reset job.
package monthkey

import "time"

// Layout is the key format, e.g. "2025-01".
const Layout = "2006-01"

// For returns the month key for the given instant, in UTC.
func For(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Current returns the month key for the present moment.
func Current() string {
	return For(time.Now())
}

// Previous returns the month key immediately before the given instant's.
func Previous(t time.Time) string {
	year, month, _ := t.UTC().Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0).Format(Layout)
}
