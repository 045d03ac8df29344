package core

import (
	"sort"
	"time"
)

// CategoryAmount represents spend aggregated under one category.
type CategoryAmount struct {
	Category Category
	Total    float64
}

// DayGroup holds the expenses of one local calendar day, newest-first.
type DayGroup struct {
	Day      string // YYYY-MM-DD in local time
	Expenses []Expense
}

// TotalSpend sums the payer's own share across every record. Recomputed on
// every call; collections are small enough that a full fold is the right
// design, not a shortcut.
func TotalSpend(expenses []Expense) float64 {
	var total float64
	for _, e := range expenses {
		total += e.SplitTHB
	}
	return total
}

// ByCategory sums the payer's own share per category, sorted by total
// descending. Categories with zero spend are omitted. Ties keep first-seen
// order from the collection.
func ByCategory(expenses []Expense) []CategoryAmount {
	totals := make(map[Category]float64)
	var order []Category
	for _, e := range expenses {
		if _, seen := totals[e.Category]; !seen {
			order = append(order, e.Category)
		}
		totals[e.Category] += e.SplitTHB
	}

	out := make([]CategoryAmount, 0, len(order))
	for _, c := range order {
		if totals[c] == 0 {
			continue
		}
		out = append(out, CategoryAmount{Category: c, Total: totals[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Total > out[j].Total
	})
	return out
}

// GroupByDay buckets expenses by local calendar day for the history view.
// Days come out newest-first; within a day the collection's insertion order
// (newest-first) is preserved as the tie-break.
func GroupByDay(expenses []Expense, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	groups := make(map[string]*DayGroup)
	var order []string
	for _, e := range expenses {
		key := e.Time().In(loc).Format("2006-01-02")
		g, ok := groups[key]
		if !ok {
			g = &DayGroup{Day: key}
			groups[key] = g
			order = append(order, key)
		}
		g.Expenses = append(g.Expenses, e)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(order)))
	out := make([]DayGroup, 0, len(order))
	for _, key := range order {
		out = append(out, *groups[key])
	}
	return out
}
