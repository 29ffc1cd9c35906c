package aggregate

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Consolidate merges per-day summaries into windows of the given number of
// calendar days. Days are ordered most recent first and the i-th day joins
// the window represented by the date at index (i/days)*days. The first day
// seen for a window seeds it with a copy of that day's summary; later days
// add their totals and append their transaction lists.
func Consolidate(daily map[string]Summary, days int) map[string]Summary {
	if days < 1 {
		days = 1
	}

	dates := make([]time.Time, 0, len(daily))

	for key := range daily {
		t, err := time.Parse(dateLayout, key)
		if err != nil {
			// keys come from transaction dates; anything unparseable
			// cannot be placed on the calendar
			continue
		}

		dates = append(dates, t)
	}

	sort.Slice(dates, func(i, j int) bool { return dates[j].Before(dates[i]) })

	keys := make([]string, len(dates))
	for i, t := range dates {
		keys[i] = t.Format(dateLayout)
	}

	windows := make(map[string]Summary)

	for i, key := range keys {
		representative := keys[(i/days)*days]

		window, ok := windows[representative]
		if !ok {
			windows[representative] = copySummary(daily[key])
			continue
		}

		day := daily[key]
		window.Input += day.Input
		window.Output += day.Output
		window.Transactions = append(window.Transactions, day.Transactions...)
		windows[representative] = window
	}

	return windows
}

func copySummary(s Summary) Summary {
	s.Transactions = append([]TaggedTransaction(nil), s.Transactions...)
	return s
}

// Selected resolves the externally chosen window key against the
// consolidated windows, falling back to an empty summary when nothing is
// loaded, nothing is selected, or the key does not match a window.
func Selected(windows map[string]Summary, key string) Summary {
	if len(windows) == 0 || key == "" {
		return Summary{Transactions: []TaggedTransaction{}}
	}

	if window, ok := windows[key]; ok {
		return window
	}

	return Summary{Transactions: []TaggedTransaction{}}
}
