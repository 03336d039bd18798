package models

// UsageStats is the point-in-time snapshot of a user's usage counters.
// ContactsCount is a lifetime capacity counter compared against the stacked
// contacts limit; ExportsCount is scoped to the calendar month named by
// MonthKey and resets implicitly when the month rolls over.
type UsageStats struct {
	ContactsCount int    `json:"contacts_count"`
	ExportsCount  int    `json:"exports_count"`
	MonthKey      string `json:"month_key"`
}
